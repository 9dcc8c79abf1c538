// Contour Inspector: image processing pipeline with contour measurement

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/sirupsen/logrus"

	"contour-inspector/internal/config"
	"contour-inspector/internal/contour"
	"contour-inspector/internal/core"
	"contour-inspector/internal/gui"
)

const AppID = "io.contour-inspector"

func main() {
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	configPath := flag.String("config", config.DefaultPath, "Settings file")
	imagePath := flag.String("image", "", "Image to load (with -out: process headless)")
	recipePath := flag.String("recipe", "", "Recipe file with processing steps")
	outPath := flag.String("out", "", "Write the processed image here and exit")
	camera := flag.String("camera", "", "Run a headless capture session on this camera name or URL")
	flag.Parse()

	logger := initLogger(*debugMode)
	logger.WithFields(logrus.Fields{
		"version":    gui.AppVersion,
		"debug_mode": *debugMode,
	}).Info("Starting " + gui.AppName)

	settings, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Warn("Settings unreadable, using defaults")
		settings = config.Default()
	}

	style, err := settings.Overlay.Style()
	if err != nil {
		logger.WithError(err).Warn("Invalid overlay colours, using defaults")
		style = contour.DefaultStyle()
	}
	executor := core.NewExecutor(logger, style)
	var debugger *core.PipelineDebugger
	if *debugMode {
		debugger = core.NewPipelineDebugger(logger)
		executor = executor.WithDebugger(debugger)
	}

	steps, err := loadSteps(*recipePath)
	if err != nil {
		logger.WithError(err).Error("Failed to load recipe")
		os.Exit(1)
	}

	switch {
	case *camera != "":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		err := runCapture(ctx, logger, settings, executor, *camera, steps)
		stop()
		exit(logger, debugger, err)
	case *outPath != "":
		exit(logger, debugger, runImage(logger, executor, *imagePath, *outPath, steps))
	}

	myApp := app.NewWithID(AppID)
	myApp.SetIcon(theme.DocumentIcon())
	myApp.Settings().SetTheme(theme.DefaultTheme())

	mainApp := gui.NewApplication(myApp, logger, settings, *configPath, executor)
	if *recipePath != "" {
		if err := mainApp.LoadRecipeFromPath(*recipePath); err != nil {
			logger.WithError(err).Warn("Recipe not loaded")
		}
	}
	if *imagePath != "" {
		if err := mainApp.LoadImageFromPath(*imagePath); err != nil {
			logger.WithError(err).Warn("Image not loaded")
		}
	}
	mainApp.ShowAndRun()

	if debugger != nil {
		debugger.PrintStatus(os.Stderr)
	}
	logger.Info("Application shutting down gracefully")
}

func exit(logger *logrus.Logger, debugger *core.PipelineDebugger, err error) {
	if debugger != nil {
		debugger.PrintStatus(os.Stderr)
	}
	if err != nil {
		logger.WithError(err).Error("Run failed")
		os.Exit(1)
	}
	os.Exit(0)
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
