package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gdblog/go-blog/middleware"
	"github.com/gdblog/go-blog/publicapi"
	"github.com/gdblog/go-blog/service/limiters"
	"github.com/gdblog/go-blog/service/logger"
	"github.com/gdblog/go-blog/service/persist"
	sentryutil "github.com/gdblog/go-blog/service/sentry"
	"github.com/gdblog/go-blog/util"
)

type createCommentResponse struct {
	ID persist.DBID `json:"id"`
}

type markReadRequest struct {
	IDs []persist.DBID `json:"ids"`
}

type unreadCountResponse struct {
	Count int `json:"count"`
}

func HandlersInit(router *gin.Engine, api *publicapi.PublicAPI, stores publicapi.Stores, commentLimiter *limiters.KeyRateLimiter) *gin.Engine {
	router.GET("/alive", util.HealthCheckHandler())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := router.Group("/", middleware.Authenticate(stores.Users))

	comments := authed.Group("/comments")
	comments.GET("", listComments(api))
	comments.GET("/:id", getComment(api))
	comments.POST("", middleware.AuthRequired(), middleware.RateLimited(commentLimiter), createComment(api))
	comments.DELETE("/:id", middleware.AuthRequired(), deleteComment(api))

	notifs := authed.Group("/notifications", middleware.AuthRequired())
	notifs.GET("", listNotifications(api))
	notifs.GET("/unread", unreadCount(api))
	notifs.POST("/read", markRead(api))

	return router
}

func listComments(api *publicapi.PublicAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input publicapi.ListCommentsInput
		if err := c.ShouldBindQuery(&input); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		page, err := api.Comment.ListThreaded(c, input)
		if err != nil {
			errResponse(c, err)
			return
		}

		c.JSON(http.StatusOK, page)
	}
}

func getComment(api *publicapi.PublicAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		commentID, ok := idParam(c)
		if !ok {
			return
		}

		view, err := api.Comment.GetCommentByID(c, commentID)
		if err != nil {
			errResponse(c, err)
			return
		}

		c.JSON(http.StatusOK, view)
	}
}

func createComment(api *publicapi.PublicAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input publicapi.CreateCommentInput
		if err := c.ShouldBindJSON(&input); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		id, err := api.Comment.CreateComment(c, middleware.IdentityFor(c), input)
		if err != nil {
			errResponse(c, err)
			return
		}

		c.JSON(http.StatusOK, createCommentResponse{ID: id})
	}
}

func deleteComment(api *publicapi.PublicAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		commentID, ok := idParam(c)
		if !ok {
			return
		}

		if err := api.Comment.DeleteComment(c, middleware.IdentityFor(c), commentID); err != nil {
			errResponse(c, err)
			return
		}

		c.JSON(http.StatusOK, util.SuccessResponse{Success: true})
	}
}

func listNotifications(api *publicapi.PublicAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input publicapi.ListNotificationsInput
		if err := c.ShouldBindQuery(&input); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		page, err := api.Notifications.ListNotifications(c, middleware.IdentityFor(c), input)
		if err != nil {
			errResponse(c, err)
			return
		}

		c.JSON(http.StatusOK, page)
	}
}

func unreadCount(api *publicapi.PublicAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := api.Notifications.UnreadCount(c, middleware.IdentityFor(c))
		if err != nil {
			errResponse(c, err)
			return
		}

		c.JSON(http.StatusOK, unreadCountResponse{Count: count})
	}
}

func markRead(api *publicapi.PublicAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input markReadRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		success, err := api.Notifications.MarkRead(c, middleware.IdentityFor(c), input.IDs)
		if err != nil {
			errResponse(c, err)
			return
		}

		c.JSON(http.StatusOK, util.SuccessResponse{Success: success})
	}
}

func idParam(c *gin.Context) (persist.DBID, bool) {
	id, err := persist.ParseDBID(c.Param("id"))
	if err != nil {
		util.ErrResponse(c, http.StatusBadRequest, fmt.Errorf("invalid id: %s", c.Param("id")))
		return 0, false
	}
	return id, true
}

// errResponse maps an error from the api to its status code
func errResponse(c *gin.Context, err error) {
	switch {
	case publicapi.IsValidationError(err):
		util.ErrResponse(c, http.StatusBadRequest, err)
	case publicapi.IsNotFoundError(err):
		util.ErrResponse(c, http.StatusNotFound, err)
	case publicapi.IsAuthorizationError(err):
		util.ErrResponse(c, http.StatusForbidden, err)
	default:
		logger.For(c).Errorf("request failed: %s", err)
		sentryutil.ReportError(c, err)
		util.ErrResponse(c, http.StatusInternalServerError, err)
	}
}
