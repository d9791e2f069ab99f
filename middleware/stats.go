package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seo-optimizer/auditor/stats"
)

// AuditURLKey is set by audit handlers to the URL being audited.
const AuditURLKey = "auditURL"

// Stats records visitors for every request and audit outcomes for requests
// whose handler set AuditURLKey.
func Stats(traffic *stats.Traffic) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		traffic.TrackVisitor(c.ClientIP())

		c.Next()

		if target := c.GetString(AuditURLKey); target != "" {
			traffic.TrackAudit(target, time.Since(start), c.Writer.Status() >= 400)
		}
	}
}
