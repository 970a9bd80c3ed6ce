package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/buildsite-platform/stock-service/internal/application"
	"github.com/buildsite-platform/stock-service/pkg/logging"
	"github.com/buildsite-platform/stock-service/pkg/middleware"
)

func addStockHandler(service *application.StockApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Name     string `json:"name" binding:"required"`
			Unit     string `json:"unit" binding:"required"`
			Category string `json:"category"`
			SiteID   string `json:"siteId"`
			Quantity int    `json:"quantity" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		cmd := application.AddStockCommand{
			Name:     req.Name,
			Unit:     req.Unit,
			Category: req.Category,
			SiteID:   req.SiteID,
			Quantity: req.Quantity,
			Actor:    middleware.ActorID(c),
		}

		stock, err := service.AddStock(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, stock)
	}
}

func listStocksHandler(service *application.StockApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		query := application.ListStocksQuery{
			SiteID: c.Query("siteId"),
			Limit:  queryInt(c, "limit", 100),
			Offset: queryInt(c, "offset", 0),
		}

		stocks, err := service.ListStocks(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, stocks)
	}
}

func requestTransferHandler(service *application.TransferApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			StockID  string `json:"stockId" binding:"required"`
			Quantity int    `json:"quantity" binding:"required"`
			ToSiteID string `json:"toSiteId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		cmd := application.RequestTransferCommand{
			StockID:  req.StockID,
			Quantity: req.Quantity,
			ToSiteID: req.ToSiteID,
			Actor:    middleware.ActorID(c),
		}

		transfer, err := service.RequestTransfer(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, transfer)
	}
}

func listTransfersHandler(service *application.TransferApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		query := application.ListTransfersQuery{
			Status: c.Query("status"),
			Limit:  queryInt(c, "limit", 100),
			Offset: queryInt(c, "offset", 0),
		}

		transfers, err := service.ListTransfers(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, transfers)
	}
}

func approveTransferHandler(service *application.TransferApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		cmd := application.DecideTransferCommand{
			TransferID: c.Param("id"),
			Actor:      middleware.ActorID(c),
		}

		transfer, err := service.ApproveTransfer(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, transfer)
	}
}

func rejectTransferHandler(service *application.TransferApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		cmd := application.DecideTransferCommand{
			TransferID: c.Param("id"),
			Actor:      middleware.ActorID(c),
		}

		transfer, err := service.RejectTransfer(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, transfer)
	}
}

func recordUsageHandler(service *application.UsageApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			StockID  string `json:"stockId" binding:"required"`
			SiteID   string `json:"siteId" binding:"required"`
			Quantity int    `json:"quantity" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		cmd := application.RecordUsageCommand{
			StockID:  req.StockID,
			SiteID:   req.SiteID,
			Quantity: req.Quantity,
			Actor:    middleware.ActorID(c),
		}

		usage, err := service.RecordUsage(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, usage)
	}
}

func listUsagesHandler(service *application.UsageApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		query := application.ListUsagesQuery{
			SiteID: c.Query("siteId"),
			Limit:  queryInt(c, "limit", 100),
			Offset: queryInt(c, "offset", 0),
		}

		usages, err := service.ListUsages(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, usages)
	}
}

func queryInt(c *gin.Context, key string, defaultValue int) int {
	value := c.Query(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}
