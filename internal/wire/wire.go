// Package wire provides dependency injection for the LCS application.
// Services are built over one explicitly opened store; the CLI uses the
// lazy singleton container resolved from the active config profile.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	"github.com/example/lcs/internal/adapters/sqlite"
	"github.com/example/lcs/internal/app"
	"github.com/example/lcs/internal/config"
	"github.com/example/lcs/internal/db"
	"github.com/example/lcs/internal/ports/primary"
	"github.com/example/lcs/internal/ports/secondary"
)

// Container holds every service wired over a single database handle.
type Container struct {
	DB *sql.DB

	userRepo secondary.UserRepository

	Tasks       primary.TaskService
	Workflows   primary.WorkflowService
	Assessments primary.AssessmentService
	Registry    primary.RegistryService
	Users       primary.UserService
	Audit       primary.AuditService
	Delivery    primary.DeliveryService
}

// New builds a container over an opened database handle. The caller owns
// the handle.
func New(database *sql.DB) *Container {
	taskRepo := sqlite.NewTaskRepository(database)
	workflowRepo := sqlite.NewWorkflowRepository(database)
	assessmentRepo := sqlite.NewAssessmentRepository(database)
	domainRepo := sqlite.NewDomainRepository(database)
	userRepo := sqlite.NewUserRepository(database)
	auditRepo := sqlite.NewAuditRepository(database)
	exportRepo := sqlite.NewExportArtifactRepository(database)

	return &Container{
		DB:          database,
		userRepo:    userRepo,
		Tasks:       app.NewTaskService(taskRepo, domainRepo, auditRepo),
		Workflows:   app.NewWorkflowService(workflowRepo, taskRepo, domainRepo, auditRepo),
		Assessments: app.NewAssessmentService(assessmentRepo, taskRepo, workflowRepo, domainRepo, auditRepo),
		Registry:    app.NewRegistryService(domainRepo, userRepo),
		Users:       app.NewUserService(userRepo),
		Audit:       app.NewAuditService(auditRepo),
		Delivery:    app.NewDeliveryService(workflowRepo, taskRepo, exportRepo),
	}
}

// ResolveActor resolves a username to the (user, role) pair the services
// consume. The CLI trusts the local operator; passwords only matter to the
// HTTP transport.
func (c *Container) ResolveActor(ctx context.Context, username string) (primary.Actor, error) {
	user, err := c.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return primary.Actor{}, fmt.Errorf("unknown user %q (create it with `lcs user add`)", username)
	}
	return primary.Actor{User: user.Username, Role: user.Role}, nil
}

var (
	defaultContainer *Container
	defaultConfig    *config.Config
	once             sync.Once
)

// Default returns the singleton container wired to the active config
// profile's database. Initialization failures are fatal: CLI commands
// cannot do anything useful without a store.
func Default() *Container {
	once.Do(initDefault)
	return defaultContainer
}

// Cfg returns the loaded configuration backing the default container.
func Cfg() *config.Config {
	once.Do(initDefault)
	return defaultConfig
}

func initDefault() {
	dir, err := config.Dir()
	if err != nil {
		log.Fatalf("failed to locate config: %v", err)
	}
	cfg, err := config.LoadOrInit(dir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	path, err := cfg.ActiveDBPath()
	if err != nil {
		log.Fatalf("failed to resolve database: %v", err)
	}
	database, err := db.Open(path)
	if err != nil {
		log.Fatalf("failed to open database %s: %v", path, err)
	}

	defaultConfig = cfg
	defaultContainer = New(database)
}
