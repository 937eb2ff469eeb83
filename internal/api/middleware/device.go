package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// DeviceCookie holds the device id, the scope every session is stored under.
	DeviceCookie = "lyvo_device"
	// TabHeader carries the id of the SPA instance making the request.
	TabHeader = "X-Tab-ID"
	// TabQuery is the fallback for clients that cannot set headers (EventSource).
	TabQuery = "tab_id"

	ctxDeviceID = "device_id"
	ctxTabID    = "tab_id"

	maxTabIDLen     = 64
	deviceCookieAge = 400 * 24 * time.Hour
)

// DeviceOptions configures the Device middleware.
type DeviceOptions struct {
	// Secure marks the device cookie Secure. Enable behind TLS.
	Secure bool
}

// Device identifies the browser profile and the tab behind every request.
// A missing or malformed device cookie is replaced with a new id; a missing
// tab id is generated and echoed back in the X-Tab-ID response header.
func Device(opts DeviceOptions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			deviceID := ""
			if ck, err := c.Cookie(DeviceCookie); err == nil {
				if id, err := uuid.Parse(ck.Value); err == nil {
					deviceID = id.String()
				}
			}
			if deviceID == "" {
				deviceID = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     DeviceCookie,
					Value:    deviceID,
					Path:     "/",
					MaxAge:   int(deviceCookieAge / time.Second),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			tabID := c.Request().Header.Get(TabHeader)
			if tabID == "" {
				tabID = c.QueryParam(TabQuery)
			}
			if tabID == "" || len(tabID) > maxTabIDLen {
				tabID = uuid.NewString()
			}
			c.Response().Header().Set(TabHeader, tabID)

			c.Set(ctxDeviceID, deviceID)
			c.Set(ctxTabID, tabID)
			return next(c)
		}
	}
}

// DeviceID returns the device id set by Device, or "".
func DeviceID(c echo.Context) string {
	id, _ := c.Get(ctxDeviceID).(string)
	return id
}

// TabID returns the tab id set by Device, or "".
func TabID(c echo.Context) string {
	id, _ := c.Get(ctxTabID).(string)
	return id
}
