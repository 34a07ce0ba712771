package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/iwvelando/loan-schedule/internal/config"
	"github.com/iwvelando/loan-schedule/internal/logging"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/output"
	"github.com/iwvelando/loan-schedule/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	terms, err := conf.ToLoanTerms()
	if err != nil {
		logger.Fatal("failed to build loan terms",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	cal, err := conf.Calendar()
	if err != nil {
		logger.Fatal("failed to build holiday calendar",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	schedule, err := loans.NewScheduleGenerator(logger, cal).Generate(terms)
	if err != nil {
		logger.Fatal("failed to generate schedule",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, schedule)
	case constants.OutputFormatCSV:
		err = output.CsvFormat(os.Stdout, schedule)
	case constants.OutputFormatJSON:
		err = output.JSONFormat(os.Stdout, schedule)
	}
	if err != nil {
		logger.Fatal("failed to write schedule",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
