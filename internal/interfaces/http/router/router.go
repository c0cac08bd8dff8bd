package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/expenseflow/backend/internal/interfaces/http/handler"
	"github.com/expenseflow/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every HTTP handler the router wires up.
type Handlers struct {
	Expense   *handler.ExpenseHandler
	Workflow  *handler.WorkflowHandler
	Action    *handler.ActionHandler
	History   *handler.HistoryHandler
	Comment   *handler.CommentHandler
	Budget    *handler.BudgetHandler
	Threshold *handler.ThresholdHandler
	Alert     *handler.AlertHandler
	Segment   *handler.SegmentHandler
}

// New builds the gin engine with middleware and all API routes registered.
func New(logger *zap.Logger, h Handlers) *gin.Engine {
	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Actor())
	engine.Use(middleware.Logging(logger))
	engine.Use(middleware.Recovery(logger))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")

	registerExpenseRoutes(api, h)
	registerWorkflowRoutes(api, h)
	registerBudgetRoutes(api, h)
	registerSegmentRoutes(api, h)

	return engine
}

func registerExpenseRoutes(api *gin.RouterGroup, h Handlers) {
	expenses := api.Group("/expenses")
	{
		// Static paths must be registered before parameterized ones.
		expenses.GET("/pending-approvals", h.Expense.ListPendingApprovals)

		expenses.POST("", h.Expense.Create)
		expenses.GET("", h.Expense.List)
		expenses.GET("/:id", h.Expense.Get)
		expenses.PUT("/:id", h.Expense.Update)
		expenses.DELETE("/:id", h.Expense.Delete)

		expenses.POST("/:id/submit", h.Expense.Submit)
		expenses.POST("/:id/approve", h.Expense.Approve)
		expenses.POST("/:id/reject", h.Expense.Reject)
		expenses.POST("/:id/pay", h.Expense.MarkPaid)
		expenses.POST("/:id/documents", h.Expense.AttachDocument)

		expenses.GET("/:id/actions", h.Action.ListByExpense)
		expenses.GET("/:id/actions/latest", h.Action.Latest)
		expenses.GET("/:id/steps/:stepID/approval", h.Action.ApprovedAtStep)
		expenses.GET("/:id/history", h.History.ListByExpense)
		expenses.GET("/:id/history/latest", h.History.Latest)

		expenses.POST("/:id/comments", h.Comment.Add)
		expenses.GET("/:id/comments", h.Comment.ListByExpense)
	}
}

func registerWorkflowRoutes(api *gin.RouterGroup, h Handlers) {
	workflows := api.Group("/workflows")
	{
		workflows.GET("/active", h.Workflow.ListActive)

		workflows.POST("", h.Workflow.Create)
		workflows.GET("", h.Workflow.List)
		workflows.GET("/:id", h.Workflow.Get)
		workflows.PUT("/:id", h.Workflow.Update)
		workflows.DELETE("/:id", h.Workflow.Delete)
		workflows.POST("/:id/activate", h.Workflow.Activate)
		workflows.POST("/:id/deactivate", h.Workflow.Deactivate)
	}

	actions := api.Group("/approval-actions")
	{
		actions.POST("", h.Action.Record)
		actions.GET("/delegations", h.Action.ListPendingDelegations)
	}

	history := api.Group("/workflow-history")
	{
		history.GET("", h.History.ListSince)
		history.GET("/by-actor/:id", h.History.ListByActor)
	}

	comments := api.Group("/comments")
	{
		comments.PUT("/:id", h.Comment.Edit)
		comments.DELETE("/:id", h.Comment.Delete)
	}
}

func registerBudgetRoutes(api *gin.RouterGroup, h Handlers) {
	budgets := api.Group("/budgets")
	{
		budgets.POST("", h.Budget.Create)
		budgets.GET("", h.Budget.List)
		budgets.GET("/:id", h.Budget.Get)
		budgets.PUT("/:id", h.Budget.Update)
		budgets.DELETE("/:id", h.Budget.Delete)
		budgets.POST("/:id/activate", h.Budget.Activate)
		budgets.POST("/:id/deactivate", h.Budget.Deactivate)

		budgets.POST("/:id/thresholds", h.Threshold.Create)
		budgets.GET("/:id/thresholds", h.Threshold.ListByBudget)

		budgets.GET("/:id/alerts", h.Alert.ListByBudget)
		budgets.DELETE("/:id/alerts/acknowledged", h.Alert.DeleteAcknowledged)
	}

	thresholds := api.Group("/thresholds")
	{
		thresholds.PUT("/:id/alerts", h.Threshold.SetAlertEnabled)
		thresholds.POST("/:id/recipients", h.Threshold.AddRecipient)
		thresholds.DELETE("/:id/recipients/:userID", h.Threshold.RemoveRecipient)
		thresholds.DELETE("/:id", h.Threshold.Delete)
	}

	alerts := api.Group("/alerts")
	{
		alerts.GET("/unacknowledged", h.Alert.ListUnacknowledged)
		alerts.GET("/recent", h.Alert.ListRecent)
		alerts.DELETE("/older-than", h.Alert.DeleteOlderThan)
		alerts.POST("/check", h.Alert.Check)
		alerts.POST("/:id/acknowledge", h.Alert.Acknowledge)
	}
}

func registerSegmentRoutes(api *gin.RouterGroup, h Handlers) {
	segments := api.Group("/segments")
	{
		segments.GET("/by-type/:type", h.Segment.ListByType)

		segments.POST("", h.Segment.Create)
		segments.GET("", h.Segment.List)
		segments.GET("/:id", h.Segment.Get)
		segments.PUT("/:id", h.Segment.Update)
		segments.DELETE("/:id", h.Segment.Delete)
		segments.GET("/:id/children", h.Segment.ListChildren)
		segments.POST("/:id/activate", h.Segment.Activate)
		segments.POST("/:id/deactivate", h.Segment.Deactivate)
	}
}
