package router

import (
	"github.com/gin-gonic/gin"

	"github.com/blues/bms/internal/handler"
	"github.com/blues/bms/internal/logic"
)

func Setup(bountyLogic *logic.BountyLogic, interestLogic *logic.InterestLogic, tipLogic *logic.TipLogic, activityLogic *logic.ActivityLogic) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "bounty-marketplace-service",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 悬赏相关路由
		bountyHandler := handler.NewBountyHandler(bountyLogic, interestLogic, tipLogic)
		activityHandler := handler.NewActivityHandler(activityLogic)
		bounties := v1.Group("/bounties")
		{
			bounties.POST("", bountyHandler.CreateBounty)
			bounties.GET("", bountyHandler.GetBounties)
			bounties.GET("/stats", bountyHandler.GetStats)
			bounties.GET("/:id", bountyHandler.GetBounty)
			bounties.POST("/:id/interests", bountyHandler.StartWork)
			bounties.GET("/:id/interests", bountyHandler.GetInterests)
			bounties.GET("/:id/tips", bountyHandler.GetTips)
			bounties.GET("/:id/activities", activityHandler.GetBountyActivities)
			bounties.POST("/:id/fulfillments/:fid/accept", bountyHandler.AcceptFulfillment)
		}

		// 打赏相关路由
		tipHandler := handler.NewTipHandler(tipLogic)
		tips := v1.Group("/tips")
		{
			tips.POST("", tipHandler.CreateTip)
			tips.GET("/:id", tipHandler.GetTip)
			tips.POST("/:id/payout", tipHandler.PayoutTip)
		}

		// 意向相关路由
		interestHandler := handler.NewInterestHandler(interestLogic)
		interests := v1.Group("/interests")
		{
			interests.GET("/:id", interestHandler.GetInterest)
			interests.POST("/:id/approve", interestHandler.ApproveInterest)
			interests.POST("/:id/status", interestHandler.ChangeInterestStatus)
		}

		// 审核队列路由
		activities := v1.Group("/activities")
		{
			activities.GET("/review", activityHandler.GetReviewQueue)
			activities.POST("/:id/reviewed", activityHandler.MarkReviewed)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
