package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/moneywise/moneywise/internal/config"
	"github.com/moneywise/moneywise/internal/db"
	"github.com/moneywise/moneywise/internal/repository"
	"github.com/moneywise/moneywise/internal/service"
)

type App struct {
	Cfg         *config.Config
	DB          *sqlx.DB
	AuthService *service.AuthService
	ChatService *service.ChatService
}

func New(cfg *config.Config) (*App, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	userRepository := repository.NewUserRepository(database)
	chatRepository := repository.NewChatRepository(database)

	return &App{
		Cfg:         cfg,
		DB:          database,
		AuthService: service.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTExpiry),
		ChatService: service.NewChatService(chatRepository),
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
