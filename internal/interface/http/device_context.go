package http

import (
	"github.com/gin-gonic/gin"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/device"
)

const deviceClaimsKey = "device_claims"

func setClaims(c *gin.Context, claims device.Claims) {
	c.Set(deviceClaimsKey, claims)
}

func getClaims(c *gin.Context) (device.Claims, bool) {
	value, ok := c.Get(deviceClaimsKey)
	if !ok {
		return device.Claims{}, false
	}
	claims, ok := value.(device.Claims)
	return claims, ok
}
