package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/notekit/notekit/internal/config"
	"github.com/notekit/notekit/internal/configserver"
	"github.com/notekit/notekit/internal/fhirconfig"
	"github.com/notekit/notekit/internal/note"
	"github.com/notekit/notekit/internal/request"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "notekit",
		Short: "FHIR DocumentReference write test harness",
	}

	rootCmd.AddCommand(localizeCmd())
	rootCmd.AddCommand(requestCmd())
	rootCmd.AddCommand(configServerCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "" || os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func localizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "localize",
		Short: "Fill a DocumentReference template with patient-specific values",
		RunE: func(cmd *cobra.Command, args []string) error {
			docType, _ := cmd.Flags().GetString("type")
			patientID, _ := cmd.Flags().GetString("patient-id")
			server, _ := cmd.Flags().GetString("server")
			patientName, _ := cmd.Flags().GetString("patient-name")
			authorReference, _ := cmd.Flags().GetString("author-reference")
			authorDisplay, _ := cmd.Flags().GetString("author-display")
			encounterReference, _ := cmd.Flags().GetString("encounter-reference")
			encounterDisplay, _ := cmd.Flags().GetString("encounter-display")
			encounterContained, _ := cmd.Flags().GetString("encounter-contained")
			identifierSystem, _ := cmd.Flags().GetString("identifier-system")
			outputDir, _ := cmd.Flags().GetString("output-dir")
			noWrite, _ := cmd.Flags().GetBool("no-write")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger()

			opts := note.Options{
				Type:               docType,
				PatientID:          patientID,
				Server:             server,
				PatientName:        stringOr(patientName, cfg.DefaultPatientName),
				AuthorReference:    authorReference,
				AuthorDisplay:      stringOr(authorDisplay, cfg.DefaultAuthorDisplay),
				EncounterReference: encounterReference,
				EncounterDisplay:   encounterDisplay,
				IdentifierSystem:   stringOr(identifierSystem, cfg.IdentifierSystem),
				OutputDir:          outputDir,
				AssetDir:           cfg.AssetDir,
				SkipWrite:          noWrite,
				AppName:            cfg.AppName,
				Logger:             &logger,
			}
			if encounterContained != "" {
				opts.EncounterContained = note.ContainedJSON(encounterContained)
			}

			doc, err := note.Localize(opts)
			if err != nil {
				return err
			}
			if doc.Path != "" {
				fmt.Printf("Localized %s document written to %s\n", docType, doc.Path)
			} else {
				fmt.Printf("Localized %s document (%d bytes, not written)\n", docType, len(doc.Bytes))
			}
			return nil
		},
	}

	cmd.Flags().String("type", "", "Document type key (required, one of: "+strings.Join(note.TypeKeys(), ", ")+")")
	cmd.Flags().String("patient-id", "", "Patient resource id (required)")
	cmd.Flags().String("server", "", "Target server name used for the output directory (required)")
	cmd.Flags().String("patient-name", "", "Patient display name")
	cmd.Flags().String("author-reference", "", "Author reference, e.g. Practitioner/123")
	cmd.Flags().String("author-display", "", "Author display name")
	cmd.Flags().String("encounter-reference", "", "Encounter reference, e.g. Encounter/456 or #contained-id")
	cmd.Flags().String("encounter-display", "", "Encounter display text")
	cmd.Flags().String("encounter-contained", "", "Contained Encounter resource as JSON")
	cmd.Flags().String("identifier-system", "", "Identifier system for the generated identifier")
	cmd.Flags().String("output-dir", "", "Output directory (default <projectRoot>/localized/<server>)")
	cmd.Flags().Bool("no-write", false, "Do not write the document to disk")
	return cmd
}

func requestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request METHOD PATH",
		Short: "Execute an HTTP request against a configured FHIR server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bodyFile, _ := cmd.Flags().GetString("body")
			configName, _ := cmd.Flags().GetString("config")
			headerFlags, _ := cmd.Flags().GetStringArray("header")
			purpose, _ := cmd.Flags().GetString("purpose")
			outDir, _ := cmd.Flags().GetString("out-dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			headers, err := parseHeaders(headerFlags)
			if err != nil {
				return err
			}

			executor := &request.Executor{
				ConfigDirName: cfg.ConfigDir,
				Logger:        newLogger(),
			}
			result, err := executor.Execute(context.Background(), request.Spec{
				Method:     args[0],
				Path:       args[1],
				BodyFile:   bodyFile,
				Headers:    headers,
				Purpose:    purpose,
				ConfigName: configName,
				OutDir:     outDir,
			})
			if result != nil {
				fmt.Printf("Response artifacts: %s, %s\n", result.MetadataPath, result.BodyPath)
			}
			return err
		},
	}

	cmd.Flags().String("body", "", "Request body file, resolved relative to the project root")
	cmd.Flags().String("config", "", "Named server configuration to use")
	cmd.Flags().StringArray("header", nil, "Extra request header as \"Name: value\" (repeatable)")
	cmd.Flags().String("purpose", "", "Free-text purpose recorded in response metadata")
	cmd.Flags().String("out-dir", "", "Directory for response artifacts (default current directory)")
	return cmd
}

func configServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config-server",
		Short: "Run the local server-configuration collection form",
		RunE: func(cmd *cobra.Command, args []string) error {
			port, _ := cmd.Flags().GetString("port")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port == "" {
				port = cfg.ConfigServerPort
			}
			logger := newLogger()

			// The config server is the setup tool, so it creates the
			// sentinel directory when no project root exists yet.
			root, err := fhirconfig.FindProjectRoot(".", cfg.ConfigDir)
			if err != nil {
				root = "."
				if err := os.MkdirAll(cfg.ConfigDir, 0o755); err != nil {
					return fmt.Errorf("create config directory: %w", err)
				}
				logger.Info().Str("dir", cfg.ConfigDir).Msg("created config directory in current directory")
			}

			store := fhirconfig.NewStore(root, cfg.ConfigDir)
			return configserver.New(store, logger).Run(port)
		},
	}

	cmd.Flags().String("port", "", "Port to listen on (default from CONFIG_SERVER_PORT)")
	return cmd
}

// parseHeaders converts repeated "Name: value" flags into a header map.
func parseHeaders(flags []string) (map[string]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(flags))
	for _, f := range flags {
		name, value, found := strings.Cut(f, ":")
		if !found || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q, expected \"Name: value\"", f)
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers, nil
}

func stringOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
