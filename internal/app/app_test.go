package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/webpot/internal/config"
	"github.com/polkiloo/webpot/internal/domain/model"
	testhelpers "github.com/polkiloo/webpot/internal/test"
	"github.com/polkiloo/webpot/internal/worker"
)

func newTestDispatcher() *worker.NotificationDispatcher {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return worker.NewNotificationDispatcher(&testhelpers.WorkerFacadeStub{}, 10*time.Millisecond, 1, 1, logger)
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{RunAddress: ":9999"}
	router := gin.New()
	server := newHTTPServer(serverParams{Config: cfg, Router: router})
	if server.Addr != ":9999" {
		t.Fatalf("expected address :9999, got %q", server.Addr)
	}
	if server.Handler != router {
		t.Fatalf("expected handler to be router")
	}
}

func TestNewNotificationDispatcherUsesConfig(t *testing.T) {
	dispatcher := newNotificationDispatcher(workerParams{
		Facade: &WebpotFacade{},
		Config: &config.Config{NotifyPollInterval: 15 * time.Second, NotifyBatchSize: 3, WorkerPoolSize: 4},
		Logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
	if dispatcher == nil {
		t.Fatal("expected notification dispatcher instance")
	}
}

func TestRegisterLifecycleStartStop(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	worker := newTestDispatcher()
	cfg := &config.Config{ShutdownTimeout: 100 * time.Millisecond}

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     logger,
		Server:     server,
		Worker:     worker,
		Config:     cfg,
	})

	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected one hook registered, got %d", len(recorder.Hooks))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := recorder.Start(ctx); err != nil {
		t.Fatalf("on start failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = recorder.Stop(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected on stop to finish")
	}
}

func TestRegisterLifecycleShutdownOnServerError(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	server := &http.Server{Addr: "bad addr"}
	worker := newTestDispatcher()

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     logger,
		Server:     server,
		Worker:     worker,
		Config:     &config.Config{ShutdownTimeout: time.Second},
	})

	hook := recorder.Hooks[0]
	if err := hook.OnStart(context.Background()); err != nil {
		t.Fatalf("on start returned error: %v", err)
	}

	select {
	case <-shutdowner.Called:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown to be triggered on server error")
	}

	_ = hook.OnStop(context.Background())
}

func TestRegisterLifecycleBootstrapsAdmin(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	f := newFacade(nil)
	cfg := &config.Config{
		ShutdownTimeout: 100 * time.Millisecond,
		AdminEmail:      "Admin@Webpot.in",
		AdminPassword:   "secret",
	}

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     logger,
		Server:     &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()},
		Worker:     newTestDispatcher(),
		Config:     cfg,
		Facade:     f.facade,
	})

	hook := recorder.Hooks[0]
	if err := hook.OnStart(context.Background()); err != nil {
		t.Fatalf("on start failed: %v", err)
	}
	t.Cleanup(func() { _ = hook.OnStop(context.Background()) })

	admin, err := f.users.GetByEmail(context.Background(), "admin@webpot.in")
	if err != nil {
		t.Fatalf("admin not stored: %v", err)
	}
	if admin.Role != model.RoleAdmin || admin.PasswordHash != "hash:secret" {
		t.Fatalf("unexpected admin account %+v", admin)
	}
}

func TestRegisterLifecycleAdminBootstrapFailure(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	f := newFacade(nil)
	f.users.Err = errors.New("db down")

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)},
		Logger:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Server:     &http.Server{Addr: "127.0.0.1:0"},
		Worker:     newTestDispatcher(),
		Config:     &config.Config{ShutdownTimeout: time.Second, AdminEmail: "admin@webpot.in", AdminPassword: "secret"},
		Facade:     f.facade,
	})

	if err := recorder.Hooks[0].OnStart(context.Background()); err == nil {
		t.Fatal("expected start to fail when admin cannot be stored")
	}
}

func TestLifecycleRecorderAppend(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	hook := fx.Hook{}
	recorder.Append(hook)
	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected hook to be appended")
	}
}

func TestLifecycleRecorderStopsInReverse(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	var order []string
	for _, name := range []string{"storage", "server"} {
		name := name
		recorder.Append(fx.Hook{
			OnStart: func(context.Context) error { order = append(order, "start "+name); return nil },
			OnStop:  func(context.Context) error { order = append(order, "stop "+name); return nil },
		})
	}
	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := recorder.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	want := "start storage,start server,stop server,stop storage"
	if got := strings.Join(order, ","); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestShutdownerStub(t *testing.T) {
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	if err := shutdowner.Shutdown(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case <-shutdowner.Called:
	default:
		t.Fatal("expected shutdown notification")
	}
}
