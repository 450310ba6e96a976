package main

import (
	"context"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"classquiz/internal/config"
	"classquiz/internal/handlers"
	"classquiz/internal/mirror"
	"classquiz/internal/repository"
	"classquiz/internal/security"
	"classquiz/internal/service"
	"classquiz/internal/settings"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Load settings (created with defaults when absent)
	settingsStore, err := settings.Load(cfg.SettingsPath)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	// Load the question bank; an empty bank is tolerated and surfaces to
	// students as "no questions available"
	bank, report := repository.NewQuestionRepository(cfg.QuestionsPath).Load()
	if len(bank) == 0 {
		log.Println("Warning: question bank is empty, quizzes cannot be issued")
	} else if report.Skipped > 0 || len(report.Warnings) > 0 {
		log.Printf("Question bank loaded with %d skipped rows and %d warnings", report.Skipped, len(report.Warnings))
	}

	// Initialize workbook stores
	userRepo := repository.NewUserRepository(cfg.UsersPath)
	if err := userRepo.Init(); err != nil {
		log.Fatalf("Failed to initialize users workbook: %v", err)
	}
	resultRepo := repository.NewResultRepository(cfg.ResultsPath)
	if err := resultRepo.Init(bank); err != nil {
		log.Fatalf("Failed to initialize results workbook: %v", err)
	}

	// Remote mirror is optional; nil disables it
	sheetMirror, err := mirror.New(cfg.GoogleCredsFile, cfg.SpreadsheetID, cfg.MirrorSheetName)
	if err != nil {
		log.Printf("Warning: mirror disabled: %v", err)
		sheetMirror = nil
	}
	mirrorCtx, stopMirror := context.WithCancel(context.Background())
	defer stopMirror()
	sheetMirror.Start(mirrorCtx)
	if sheetMirror != nil {
		log.Println("Remote mirror enabled")
	}

	// Load templates
	templates, err := loadTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, sheetMirror, cfg.TeacherAccount)
	quizService := service.NewQuizService(bank, settingsStore, userRepo, resultRepo, sheetMirror)

	// Initialize handlers
	codec := security.NewSessionCodec(cfg.SessionSecret, cfg.SessionDuration)
	middleware := handlers.NewMiddleware(codec, cfg.SessionDuration)
	authHandler := handlers.NewAuthHandler(authService, middleware, templates)
	studentHandler := handlers.NewStudentHandler(quizService, middleware, templates)
	quizHandler := handlers.NewQuizHandler(quizService, middleware, templates)
	teacherHandler := handlers.NewTeacherHandler(quizService, settingsStore, templates)

	// Setup routes
	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))

	// Public routes
	mux.HandleFunc("GET /", authHandler.Home)
	mux.HandleFunc("GET /login", authHandler.ShowLogin)
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("POST /logout", authHandler.Logout)
	mux.HandleFunc("GET /logout", authHandler.Logout)

	// Student routes
	mux.HandleFunc("GET /home", middleware.RequireAuth(studentHandler.Home))
	mux.HandleFunc("GET /quiz", middleware.RequireAuth(quizHandler.ShowQuiz))
	mux.HandleFunc("POST /submit", middleware.RequireAuth(quizHandler.Submit))
	mux.HandleFunc("GET /points", middleware.RequireAuth(studentHandler.Points))
	mux.HandleFunc("GET /review", middleware.RequireAuth(studentHandler.Review))
	mux.HandleFunc("GET /change_password", middleware.RequireAuth(authHandler.ShowChangePassword))
	mux.HandleFunc("POST /change_password", middleware.RequireAuth(authHandler.ChangePassword))

	// Teacher routes
	mux.HandleFunc("GET /teacher", middleware.RequireTeacher(teacherHandler.Dashboard))
	mux.HandleFunc("GET /teacher/students", middleware.RequireTeacher(teacherHandler.Students))
	mux.HandleFunc("GET /teacher/settings", middleware.RequireTeacher(teacherHandler.ShowSettings))
	mux.HandleFunc("POST /teacher/settings", middleware.RequireTeacher(teacherHandler.UpdateSettings))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// loadTemplates loads all template files
func loadTemplates(templatesPath string) (*template.Template, error) {
	funcMap := template.FuncMap{
		"formatTime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04:05")
		},
		"add": func(a, b int) int {
			return a + b
		},
	}

	pattern := filepath.Join(templatesPath, "*.tmpl")
	return template.New("").Funcs(funcMap).ParseGlob(pattern)
}
