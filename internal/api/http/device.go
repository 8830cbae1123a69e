package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/atmosphere/internal/device"
)

const (
	DeviceHeader = "X-Device-ID"
	DeviceCookie = "atmosphere_device_id"

	deviceLocalsKey = "deviceID"
	deviceCookieTTL = 365 * 24 * time.Hour
)

// cookieStorage reads the device id from the request header or cookie and
// persists a new one as a cookie on the response. A malformed header falls
// through to the cookie.
type cookieStorage struct {
	c *fiber.Ctx
}

func (s cookieStorage) Load() (string, bool) {
	if id := s.c.Get(DeviceHeader); device.Valid(id) {
		return id, true
	}
	id := s.c.Cookies(DeviceCookie)
	return id, id != ""
}

func (s cookieStorage) Save(id string) {
	s.c.Cookie(&fiber.Cookie{
		Name:     DeviceCookie,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(deviceCookieTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func deviceMiddleware(c *fiber.Ctx) error {
	id := device.Acquire(cookieStorage{c: c})
	c.Locals(deviceLocalsKey, id)
	c.Set(DeviceHeader, id)
	return c.Next()
}

func deviceID(c *fiber.Ctx) string {
	id, _ := c.Locals(deviceLocalsKey).(string)
	return id
}
