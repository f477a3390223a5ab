// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stratastor/svcgate/pkg/agent"
	"github.com/stratastor/svcgate/pkg/errors"
	"github.com/stratastor/svcgate/pkg/transport"
)

// requestTimeout bounds how long a single host operation may take against
// an array before the caller gives up.
const requestTimeout = 30 * time.Second

// secrets is the per-request array credential triple every host operation
// carries, per the reference client's (management_address, username,
// password) call convention.
type secrets struct {
	ManagementAddress string `json:"management_address" form:"management_address" binding:"required"`
	Username          string `json:"username" form:"username" binding:"required"`
	Password          string `json:"password" form:"password" binding:"required"`
}

type createHostRequest struct {
	Secrets    secrets  `json:"secrets" binding:"required"`
	Name       string   `json:"name" binding:"required"`
	FCPorts    []string `json:"fcPorts"`
	ISCSIPorts []string `json:"iscsiPorts"`
}

// HostHandler wires the host facade's three operations onto HTTP+JSON.
// The RPC surface's shape is all that matters here; this is a thin
// translation layer over agent.Registry.
type HostHandler struct {
	agents  *agent.Registry
	tcfg    transport.Config
	poolCfg agent.PoolConfig
}

// NewHostHandler builds a HostHandler backed by agents, using tcfg as the
// template SSH config (Host/User/Password are overwritten per request)
// and poolCfg to size every newly cached agent's connection pool.
func NewHostHandler(agents *agent.Registry, tcfg transport.Config, poolCfg agent.PoolConfig) *HostHandler {
	return &HostHandler{agents: agents, tcfg: tcfg, poolCfg: poolCfg}
}

// RegisterRoutes registers the host facade under rg.
func (h *HostHandler) RegisterRoutes(rg gin.IRouter) {
	rg.POST("/hosts", h.createHost)
	rg.GET("/hosts", h.listHosts)
	rg.DELETE("/hosts/:name", h.deleteHost)
}

func (h *HostHandler) createHost(c *gin.Context) {
	var req createHostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.New(errors.ServerBadRequest, err.Error()))
		return
	}

	a, err := h.agent(req.Secrets)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	err = a.CreateHost(ctx, agent.HostSpec{
		Name:       req.Name,
		FCPorts:    req.FCPorts,
		ISCSIPorts: req.ISCSIPorts,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"name": req.Name, "status": "created"})
}

func (h *HostHandler) listHosts(c *gin.Context) {
	var s secrets
	if err := c.ShouldBindQuery(&s); err != nil {
		respondError(c, errors.New(errors.ServerBadRequest, err.Error()))
		return
	}

	a, err := h.agent(s)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	recs, err := a.GetHosts(ctx, c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"hosts": recs})
}

func (h *HostHandler) deleteHost(c *gin.Context) {
	var s secrets
	if err := c.ShouldBindQuery(&s); err != nil {
		respondError(c, errors.New(errors.ServerBadRequest, err.Error()))
		return
	}

	a, err := h.agent(s)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := a.DeleteHost(ctx, c.Param("name")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"name": c.Param("name"), "status": "deleted"})
}

func (h *HostHandler) agent(s secrets) (*agent.Agent, error) {
	return h.agents.Get(s.ManagementAddress, s.Username, s.Password, h.tcfg, h.poolCfg)
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func respondError(c *gin.Context, err error) {
	if gwErr, ok := err.(*errors.GatewayError); ok {
		c.JSON(gwErr.HTTPStatus, gwErr)
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
