package app

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/chequeflow/internal/approval"
	"github.com/shandysiswandi/chequeflow/internal/pkg/clock"
	"github.com/shandysiswandi/chequeflow/internal/pkg/config"
	"github.com/shandysiswandi/chequeflow/internal/pkg/goroutine"
	"github.com/shandysiswandi/chequeflow/internal/pkg/hash"
	"github.com/shandysiswandi/chequeflow/internal/pkg/idempotency"
	"github.com/shandysiswandi/chequeflow/internal/pkg/instrument"
	"github.com/shandysiswandi/chequeflow/internal/pkg/messaging"
	"github.com/shandysiswandi/chequeflow/internal/pkg/router"
	"github.com/shandysiswandi/chequeflow/internal/pkg/storage"
	"github.com/shandysiswandi/chequeflow/internal/pkg/uid"
	"github.com/shandysiswandi/chequeflow/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	aws       *aws.Config
	messaging messaging.Messaging
	storage   storage.Storage

	// server
	router     *router.Router
	limiter    *router.RateLimiter
	httpServer *http.Server

	// modules
	approval *approval.Module

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initDatabase()
	app.initCache()
	app.initAWS()
	app.initStorage()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
