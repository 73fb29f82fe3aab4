package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pawkie/internal/cache"
	"pawkie/internal/config"
	"pawkie/internal/database"
	"pawkie/internal/events"
	"pawkie/internal/handlers"
	"pawkie/internal/metrics"
	"pawkie/internal/middleware"
	"pawkie/internal/models"
	"pawkie/internal/service"
	"pawkie/internal/store"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Println("⚠️ user index warning:", err)
	}
	if err := database.EnsureProductIndexes(db); err != nil {
		log.Println("⚠️ product index warning:", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Println("⚠️ order index warning:", err)
	}
	if err := database.EnsureQueueIndexes(db); err != nil {
		log.Println("⚠️ queue index warning:", err)
	}
	if err := database.EnsurePostIndexes(db); err != nil {
		log.Println("⚠️ post index warning:", err)
	}

	var publisher events.OrderPublisher = events.NoopPublisher{}
	if len(config.AppEnv.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(config.AppEnv.KafkaBrokers, config.AppEnv.KafkaOrdersTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Println("order events publishing to:", config.AppEnv.KafkaOrdersTopic)
	}

	productCache := cache.NewProducts(config.AppEnv.RedisAddr)

	mongoStore := store.NewMongo(db)
	orders := service.NewOrders(mongoStore, publisher)
	queue := service.NewQueue(mongoStore)

	auth := middleware.RequireAuth(config.AppEnv.JWTSecret)

	r := gin.Default()
	r.Use(metrics.Middleware())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "pawkie is running")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/jwt", handlers.IssueToken(config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))
	r.POST("/auth/register", handlers.Register(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))
	r.POST("/auth/login", handlers.Login(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))

	r.GET("/users", handlers.GetUsers(db))
	r.POST("/users", handlers.CreateUser(db))
	r.GET("/users/admin/:email", auth, handlers.CheckRole(db, models.RoleAdmin))
	r.GET("/users/doctor/:email", auth, handlers.CheckRole(db, models.RoleDoctor))
	r.GET("/users/:email", handlers.GetUserByEmail(db))
	r.PUT("/users/:email", auth, handlers.UpdateUserByEmail(db))
	r.PATCH("/users/admin/:id", auth, middleware.RequireAdmin(db), handlers.GrantRole(db, models.RoleAdmin))
	r.PATCH("/users/doctor/:id", auth, middleware.RequireAdmin(db), handlers.GrantRole(db, models.RoleDoctor))
	r.DELETE("/users/:id", auth, middleware.RequireAdmin(db), handlers.DeleteUser(db))

	r.GET("/animal", handlers.GetAnimals(db))
	r.GET("/animal/:id", handlers.GetAnimal(db))
	r.POST("/doctors", auth, middleware.RequireAdmin(db), handlers.CreateDoctor(db))
	r.GET("/doctors", handlers.GetDoctors(db))

	api := r.Group("/api")
	{
		api.GET("/products", handlers.GetProducts(db))
		api.GET("/products/:id", handlers.GetProduct(db, productCache))
		api.POST("/products", auth, middleware.RequireAdmin(db), handlers.CreateProduct(db))
		api.PUT("/products/:id", auth, middleware.RequireAdmin(db), handlers.UpdateProduct(db, productCache))
		api.DELETE("/products/:id", auth, middleware.RequireAdmin(db), handlers.DeleteProduct(db, productCache))
		api.PATCH("/products/:id/stock", auth, middleware.RequireAdmin(db), handlers.UpdateStock(db, productCache))

		api.POST("/orders", auth, handlers.CreateOrder(orders))
		api.GET("/orders", auth, handlers.GetOrders(db))
		api.GET("/orders/:id", auth, handlers.GetOrder(db))
		api.PATCH("/orders/:id/status", auth, middleware.RequireAdmin(db), handlers.UpdateOrderStatus(db, publisher))

		api.POST("/queue", auth, handlers.EnqueuePatient(queue))
		api.GET("/queue", auth, handlers.GetQueue(queue))
		api.POST("/queue/accept", auth, middleware.RequireDoctor(db), handlers.AcceptFromQueue(queue))

		api.POST("/adopt", auth, handlers.CreateAdoptionPost(db))
		api.GET("/adopt", handlers.GetAdoptionPosts(db))
		api.DELETE("/adopt/:id", auth, handlers.DeleteAdoptionPost(db))

		api.POST("/adoptedPets", auth, handlers.CreateAdoptedPet(db))
		api.GET("/adoptedPets", handlers.GetAdoptedPets(db))
		api.PATCH("/adoptedPets/:id", auth, middleware.RequireAdmin(db), handlers.ConfirmAdoptedPet(db))
		api.DELETE("/adoptedPets/:id", auth, handlers.DeleteAdoptedPet(db))

		api.POST("/missing-pet", auth, handlers.CreatePetPost(db, handlers.MissingPostsCollection))
		api.GET("/missing-pet", handlers.GetPetPosts(db, handlers.MissingPostsCollection))
		api.GET("/missing-posts", handlers.GetPetPosts(db, handlers.MissingPostsCollection))
		api.POST("/missing-posts/:id/comments", auth, handlers.AddComment(db, handlers.MissingPostsCollection))

		api.POST("/rescue-pet", auth, handlers.CreatePetPost(db, handlers.RescuePostsCollection))
		api.GET("/rescue-posts", handlers.GetPetPosts(db, handlers.RescuePostsCollection))
		api.POST("/rescue-posts/:id/comments", auth, handlers.AddComment(db, handlers.RescuePostsCollection))

		api.POST("/prescriptions", auth, middleware.RequireDoctor(db), handlers.CreatePrescription(db))
		api.GET("/prescriptions", auth, handlers.GetPrescriptions(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
