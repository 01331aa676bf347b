package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const timezoneKey = "timezone"

// Timezone resolves the request's display timezone and stores the
// *time.Location under "timezone". Resolution order: X-Timezone header, tz
// query parameter, the configured default, then UTC. An unknown zone name
// falls through to the next source rather than failing the request.
func Timezone(defaultTZ string) gin.HandlerFunc {
	fallback := loadLocation(defaultTZ)
	return func(c *gin.Context) {
		loc := fallback
		if name := c.GetHeader("X-Timezone"); name != "" {
			if l := tryLocation(name); l != nil {
				loc = l
			}
		} else if name := c.Query("tz"); name != "" {
			if l := tryLocation(name); l != nil {
				loc = l
			}
		}
		c.Set(timezoneKey, loc)
		c.Next()
	}
}

// GetLocation reads the resolved location, defaulting to UTC.
func GetLocation(c *gin.Context) *time.Location {
	if v, exists := c.Get(timezoneKey); exists {
		if loc, ok := v.(*time.Location); ok && loc != nil {
			return loc
		}
	}
	return time.UTC
}

func loadLocation(name string) *time.Location {
	if l := tryLocation(name); l != nil {
		return l
	}
	return time.UTC
}

func tryLocation(name string) *time.Location {
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil
	}
	return loc
}
