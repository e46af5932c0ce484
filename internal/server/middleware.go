package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/nairabooks/taxcore/internal/orgcontext"
)

const HeaderOrg = "X-Org-Id"

// OrgContext resolves the calling organisation from the X-Org-Id header and
// injects it into the request context. Requests without a valid org reach the
// services, which reject them with invalid_organization.
func OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderOrg))
		if raw != "" {
			orgID, err := snowflake.ParseString(raw)
			if err != nil {
				AbortWithError(c, newValidationError("org_id", "invalid_org_id", "invalid org id"))
				return
			}
			ctx := orgcontext.WithOrgID(c.Request.Context(), int64(orgID))
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
