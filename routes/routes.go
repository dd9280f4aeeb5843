package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Mil05h/calories-ai/controllers"
	"github.com/Mil05h/calories-ai/middlewares"
	"github.com/Mil05h/calories-ai/utils"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Auth     *controllers.AuthController
	User     *controllers.UserController
	Meal     *controllers.MealController
	Analysis *controllers.AnalysisController
}

func SetupRouter(jwt *utils.JWTManager, c Controllers) *gin.Engine {
	r := gin.Default()

	auth := r.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/logout", c.Auth.Logout)
		auth.POST("/forgot-password", c.Auth.ForgotPassword)
		auth.POST("/reset-password", c.Auth.ResetPassword)
	}

	protected := r.Group("/")
	protected.Use(middlewares.AuthMiddleware(jwt))
	{
		protected.GET("/auth/session", c.Auth.Session)

		protected.GET("/user/profile", c.User.GetProfile)
		protected.PUT("/user/profile", c.User.UpdateProfile)
		protected.POST("/user/avatar", c.User.UploadAvatar)

		protected.POST("/analyze", c.Analysis.Analyze)

		protected.POST("/meals", c.Meal.Save)
		protected.GET("/meals", c.Meal.List)
		protected.GET("/meals/:id", c.Meal.Get)
	}

	return r
}
