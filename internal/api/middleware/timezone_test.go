package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func resolveTimezone(t *testing.T, defaultTZ, header, query string) *time.Location {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var got *time.Location
	router := gin.New()
	router.Use(Timezone(defaultTZ))
	router.GET("/", func(c *gin.Context) {
		got = GetLocation(c)
		c.Status(http.StatusOK)
	})

	target := "/"
	if query != "" {
		target += "?tz=" + query
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if header != "" {
		req.Header.Set("X-Timezone", header)
	}
	router.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestTimezoneFromHeader(t *testing.T) {
	loc := resolveTimezone(t, "UTC", "America/New_York", "")
	if loc.String() != "America/New_York" {
		t.Errorf("got %v", loc)
	}
}

func TestTimezoneFromQuery(t *testing.T) {
	loc := resolveTimezone(t, "UTC", "", "Europe/Berlin")
	if loc.String() != "Europe/Berlin" {
		t.Errorf("got %v", loc)
	}
}

func TestTimezoneHeaderBeatsQuery(t *testing.T) {
	loc := resolveTimezone(t, "UTC", "Asia/Tokyo", "Europe/Berlin")
	if loc.String() != "Asia/Tokyo" {
		t.Errorf("got %v", loc)
	}
}

func TestTimezoneFallsBackToDefault(t *testing.T) {
	loc := resolveTimezone(t, "Europe/Paris", "Not/AZone", "")
	if loc.String() != "Europe/Paris" {
		t.Errorf("got %v", loc)
	}
}

func TestTimezoneBadDefaultFallsBackToUTC(t *testing.T) {
	loc := resolveTimezone(t, "Not/AZone", "", "")
	if loc != time.UTC {
		t.Errorf("got %v", loc)
	}
}

func TestGetLocationWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if GetLocation(c) != time.UTC {
		t.Error("missing middleware should default to UTC")
	}
}
