package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const sectionRule = "# -----------------------------------------------------------------------------\n"

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd)

	if err := os.WriteFile(".env.example", []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Println("Successfully generated .env.example file")
	return nil
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	content.WriteString("# =============================================================================\n")
	content.WriteString("# songbridge Configuration\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	content.WriteString("# Format: <SECTION>_<SETTING>=value\n")
	content.WriteString("# CLI equivalent: --<section>-<setting>\n")
	content.WriteString("#\n\n")

	generateCredentialsSection(&content)
	generateQobuzSection(&content, cmd)
	generateAppSection(&content, cmd)
	generateServerSection(&content, cmd)
	generateLoggingSection(&content, cmd)

	return content.String()
}

func flagToEnvVar(flagName string) string {
	return strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

func getDefaultValueString(cmd *cobra.Command, flagName string) string {
	if f := cmd.Root().PersistentFlags().Lookup(flagName); f != nil {
		return f.DefValue
	}
	return ""
}

func generateCredentialsSection(content *strings.Builder) {
	content.WriteString(sectionRule)
	content.WriteString("# Credentials (required for every conversion)\n")
	content.WriteString(sectionRule)
	content.WriteString("# Spotify: create an app at https://developer.spotify.com/dashboard\n")
	fmt.Fprintf(content, "%s=your_spotify_client_id\n", flagToEnvVar("spotify-client-id"))
	fmt.Fprintf(content, "%s=your_spotify_client_secret\n", flagToEnvVar("spotify-client-secret"))
	content.WriteString("# Qobuz: a paid account; the password may also be given as its MD5 digest\n")
	fmt.Fprintf(content, "%s=you@example.com\n", flagToEnvVar("qobuz-email"))
	fmt.Fprintf(content, "%s=your_qobuz_password\n", flagToEnvVar("qobuz-password"))
	content.WriteString("\n")
}

func generateQobuzSection(content *strings.Builder, cmd *cobra.Command) {
	content.WriteString(sectionRule)
	content.WriteString("# Qobuz Session\n")
	content.WriteString(sectionRule)
	content.WriteString("# CLI: --qobuz-app-id, --qobuz-app-secret, --qobuz-session-cache, --qobuz-session-ttl-mins\n")
	content.WriteString("# Leave the app ID and secret empty to scrape them from the web player\n")

	cacheDefault := getDefaultValueString(cmd, "qobuz-session-cache")
	ttlDefault := getDefaultValueString(cmd, "qobuz-session-ttl-mins")

	fmt.Fprintf(content, "# %s=\n", flagToEnvVar("qobuz-app-id"))
	fmt.Fprintf(content, "# %s=\n", flagToEnvVar("qobuz-app-secret"))
	fmt.Fprintf(content, "%s=%s                     # Reuse sessions between conversions (default: %s)\n",
		flagToEnvVar("qobuz-session-cache"), cacheDefault, cacheDefault)
	fmt.Fprintf(content, "%s=%s                     # Cached session lifetime (default: %s)\n",
		flagToEnvVar("qobuz-session-ttl-mins"), ttlDefault, ttlDefault)
	content.WriteString("\n")
}

func generateAppSection(content *strings.Builder, cmd *cobra.Command) {
	content.WriteString(sectionRule)
	content.WriteString("# Application\n")
	content.WriteString(sectionRule)
	content.WriteString("# CLI: --language, --flood-limit-per-minute, --upstream-timeout-secs\n")

	langDefault := getDefaultValueString(cmd, "language")
	floodDefault := getDefaultValueString(cmd, "flood-limit-per-minute")
	timeoutDefault := getDefaultValueString(cmd, "upstream-timeout-secs")

	fmt.Fprintf(content, "%s=%s                               # UI language: en, de (default: %s)\n",
		flagToEnvVar("language"), langDefault, langDefault)
	fmt.Fprintf(content, "%s=%s                  # Conversions per client per minute, 0 disables (default: %s)\n",
		flagToEnvVar("flood-limit-per-minute"), floodDefault, floodDefault)
	fmt.Fprintf(content, "%s=%s                  # Upstream timeout per conversion (default: %s)\n",
		flagToEnvVar("upstream-timeout-secs"), timeoutDefault, timeoutDefault)
	content.WriteString("\n")
}

func generateServerSection(content *strings.Builder, cmd *cobra.Command) {
	content.WriteString(sectionRule)
	content.WriteString("# HTTP Server Configuration\n")
	content.WriteString(sectionRule)
	content.WriteString("# CLI: --server-host, --server-port\n")

	hostDefault := getDefaultValueString(cmd, "server-host")
	portDefault := getDefaultValueString(cmd, "server-port")

	fmt.Fprintf(content, "%s=%s                         # Server bind address (default: %s)\n",
		flagToEnvVar("server-host"), "127.0.0.1", hostDefault)
	fmt.Fprintf(content, "%s=%s                              # Server port (default: %s)\n",
		flagToEnvVar("server-port"), portDefault, portDefault)
	content.WriteString("\n")
}

func generateLoggingSection(content *strings.Builder, cmd *cobra.Command) {
	content.WriteString(sectionRule)
	content.WriteString("# Logging Configuration\n")
	content.WriteString(sectionRule)
	content.WriteString("# CLI: --log-level, --log-format\n")

	levelDefault := getDefaultValueString(cmd, "log-level")
	formatDefault := getDefaultValueString(cmd, "log-format")

	fmt.Fprintf(content, "%s=%s                                # Log level: debug, info, warn, error (default: %s)\n",
		flagToEnvVar("log-level"), levelDefault, levelDefault)
	fmt.Fprintf(content, "%s=%s                               # Log format: json, console (default: %s)\n",
		flagToEnvVar("log-format"), formatDefault, formatDefault)
	content.WriteString("\n")
}
