package server

import (
	"net/http"
	"strconv"

	"github.com/chatlens/chatlens/internal/telemetry/domain"
	"github.com/chatlens/chatlens/pkg/tenantctx"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListUsage(c *gin.Context) {
	tenantID, ok := tenantctx.TenantID(c.Request.Context())
	if !ok {
		AbortWithError(c, domain.ErrMissingTenant)
		return
	}

	resp, err := s.repo.ListUsage(c.Request.Context(), domain.ListUsageRequest{
		TenantID:  tenantID,
		Model:     c.Query("model"),
		PageToken: c.Query("page_token"),
		PageSize:  queryPageSize(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListLeads(c *gin.Context) {
	tenantID, ok := tenantctx.TenantID(c.Request.Context())
	if !ok {
		AbortWithError(c, domain.ErrMissingTenant)
		return
	}

	resp, err := s.repo.ListLeads(c.Request.Context(), domain.ListLeadsRequest{
		TenantID:  tenantID,
		PageToken: c.Query("page_token"),
		PageSize:  queryPageSize(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListMessages(c *gin.Context) {
	tenantID, ok := tenantctx.TenantID(c.Request.Context())
	if !ok {
		AbortWithError(c, domain.ErrMissingTenant)
		return
	}

	resp, err := s.repo.ListMessages(c.Request.Context(), domain.ListMessagesRequest{
		TenantID:  tenantID,
		SessionID: c.Param("session"),
		PageToken: c.Query("page_token"),
		PageSize:  queryPageSize(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func queryPageSize(c *gin.Context) int32 {
	raw := c.Query("page_size")
	if raw == "" {
		return 0
	}
	size, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || size < 0 {
		return 0
	}
	return int32(size)
}
