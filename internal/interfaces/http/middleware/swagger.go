package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/interfaces/http/dto"
)

// SwaggerConfig guards the API documentation endpoint
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool
	AllowedIPs  []string // IPs or CIDRs; empty allows every client
}

// SwaggerProtection hides the docs when disabled, then applies the IP allow
// list and, with RequireAuth, the given authentication chain.
func SwaggerProtection(cfg SwaggerConfig, authChain ...gin.HandlerFunc) gin.HandlerFunc {
	allowed := parseAllowList(cfg.AllowedIPs)

	return func(c *gin.Context) {
		requestID := c.GetString(logger.GinRequestIDKey)
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponse(
				dto.ErrCodeNotFound, "API documentation is not available", requestID))
			return
		}

		if len(allowed) > 0 && !allowed.contains(net.ParseIP(c.ClientIP())) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
				dto.ErrCodeForbidden, "Access to API documentation is restricted", requestID))
			return
		}

		if cfg.RequireAuth {
			for _, h := range authChain {
				h(c)
				if c.IsAborted() {
					return
				}
			}
		}
		c.Next()
	}
}

type allowList []*net.IPNet

// parseAllowList turns plain IPs into single-host networks. Bad entries are skipped.
func parseAllowList(entries []string) allowList {
	var nets allowList
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if !strings.Contains(e, "/") {
			ip := net.ParseIP(e)
			if ip == nil {
				continue
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			e = ip.String() + "/" + strconv.Itoa(bits)
		}
		if _, n, err := net.ParseCIDR(e); err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}

func (l allowList) contains(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, n := range l {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

