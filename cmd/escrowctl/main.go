// Command escrowctl exercises the escrow engine from the command line:
// encrypt a record against an OC key dictionary, decrypt a bucket of
// submissions with one OC's keypair, or let a user read back and edit
// their own record with a passphrase. It talks JSON on disk and never
// touches a network or a database; wiring those up is out of scope.
package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/optioncounsel/escrow/escrow"
	"github.com/optioncounsel/escrow/internal/keystore"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "escrowctl",
		Short: "Exercise the matching-escrow engine from the command line",
	}

	rootCmd.AddCommand(encryptCmd())
	rootCmd.AddCommand(decryptCmd())
	rootCmd.AddCommand(editCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "escrowctl:", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func decodeKey(b64 string) ([escrow.KeySize]byte, error) {
	var key [escrow.KeySize]byte

	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return key, fmt.Errorf("decoding key: %w", err)
	}
	if len(raw) != escrow.KeySize {
		return key, escrow.ErrImproperKeyLength
	}

	copy(key[:], raw)
	return key, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func encryptCmd() *cobra.Command {
	var (
		keysPath   string
		randIDsB64 []string
		perpID     string
		userID     string
		passB64    string
		outPath    string
		verbose    bool
		parallel   bool
	)

	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a record for one or more perpetrator ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			ocKeys, err := keystore.Load(keysPath)
			if err != nil {
				return err
			}
			if len(randIDsB64) == 0 {
				return fmt.Errorf("at least one --rand-id is required")
			}

			randIDs := make([][32]byte, len(randIDsB64))
			for i, r := range randIDsB64 {
				raw, err := base64.StdEncoding.DecodeString(r)
				if err != nil {
					return fmt.Errorf("decoding --rand-id %q: %w", r, err)
				}
				if len(raw) != 32 {
					return fmt.Errorf("--rand-id %q must decode to 32 bytes", r)
				}
				copy(randIDs[i][:], raw)
			}

			pass, err := decodeKey(passB64)
			if err != nil {
				return fmt.Errorf("--passphrase: %w", err)
			}

			var opts []escrow.Option
			opts = append(opts, escrow.WithLogger(newLogger(verbose)))
			if parallel {
				opts = append(opts, escrow.WithParallelEncrypt())
			}
			engine := escrow.New(opts...)

			record := escrow.Record{PerpID: perpID, UserID: userID}

			out, malformed := engine.Encrypt(randIDs, record, ocKeys, pass)
			if len(malformed) > 0 {
				for _, m := range malformed {
					fmt.Fprintf(os.Stderr, "malformed: id=%s kind=%s err=%v\n", m.ID, m.Kind, m.Error)
				}
			}

			return writeJSON(outPath, out)
		},
	}

	cmd.Flags().StringVar(&keysPath, "keys", "", "path to the OC key dictionary YAML")
	cmd.Flags().StringArrayVar(&randIDsB64, "rand-id", nil, "base64-encoded 32-byte random id, repeatable")
	cmd.Flags().StringVar(&perpID, "perp-id", "", "perpetrator identifier")
	cmd.Flags().StringVar(&userID, "user-id", "", "reporting user identifier")
	cmd.Flags().StringVar(&passB64, "passphrase", "", "base64-encoded 32-byte user passphrase")
	cmd.Flags().StringVar(&outPath, "out", "out.json", "path to write the resulting EncryptedMap JSON")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "fan independent randIds out across a worker pool")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	_ = cmd.MarkFlagRequired("keys")
	_ = cmd.MarkFlagRequired("perp-id")
	_ = cmd.MarkFlagRequired("user-id")
	_ = cmd.MarkFlagRequired("passphrase")

	return cmd
}

func decryptCmd() *cobra.Command {
	var (
		inPath  string
		pubB64  string
		secB64  string
		outPath string
		fast    bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt a bucket of submissions with one OC's keypair",
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []escrow.EncryptedData
			if err := readJSON(inPath, &entries); err != nil {
				return err
			}

			pub, err := decodeKey(pubB64)
			if err != nil {
				return fmt.Errorf("--public-key: %w", err)
			}
			sec, err := decodeKey(secB64)
			if err != nil {
				return fmt.Errorf("--secret-key: %w", err)
			}

			engine := escrow.New(escrow.WithLogger(newLogger(verbose)))

			var records []escrow.Record
			var malformed []escrow.Malformed
			if fast {
				records, malformed = engine.DecryptFast(entries, pub, sec)
			} else {
				records, malformed = engine.Decrypt(entries, pub, sec)
			}

			for _, m := range malformed {
				fmt.Fprintf(os.Stderr, "malformed: id=%s kind=%s err=%v\n", m.ID, m.Kind, m.Error)
			}

			return writeJSON(outPath, records)
		},
	}

	cmd.Flags().StringVar(&inPath, "in", "", "path to the EncryptedData list JSON (one OC's bucket)")
	cmd.Flags().StringVar(&pubB64, "public-key", "", "base64-encoded OC public key")
	cmd.Flags().StringVar(&secB64, "secret-key", "", "base64-encoded OC secret key")
	cmd.Flags().StringVar(&outPath, "out", "records.json", "path to write decrypted records JSON")
	cmd.Flags().BoolVar(&fast, "fast", false, "use the O(n) bucket-first reconstruction")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("public-key")
	_ = cmd.MarkFlagRequired("secret-key")

	return cmd
}

func editCmd() *cobra.Command {
	var (
		inPath   string
		passB64  string
		perpID   string
		userID   string
		outPath  string
		readOnly bool
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Read back or rewrite a user's own record across their submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []escrow.EncryptedData
			if err := readJSON(inPath, &entries); err != nil {
				return err
			}

			pass, err := decodeKey(passB64)
			if err != nil {
				return fmt.Errorf("--passphrase: %w", err)
			}

			engine := escrow.New(escrow.WithLogger(newLogger(verbose)))

			if readOnly {
				records, malformed := engine.DecryptUserRecord(pass, entries)
				for _, m := range malformed {
					fmt.Fprintf(os.Stderr, "malformed: id=%s kind=%s err=%v\n", m.ID, m.Kind, m.Error)
				}
				return writeJSON(outPath, records)
			}

			newRecord := escrow.Record{PerpID: perpID, UserID: userID}
			malformed := engine.UpdateUserRecord(pass, entries, newRecord)
			for _, m := range malformed {
				fmt.Fprintf(os.Stderr, "malformed: id=%s kind=%s err=%v\n", m.ID, m.Kind, m.Error)
			}

			return writeJSON(outPath, entries)
		},
	}

	cmd.Flags().StringVar(&inPath, "in", "", "path to the EncryptedData list JSON")
	cmd.Flags().StringVar(&passB64, "passphrase", "", "base64-encoded 32-byte user passphrase")
	cmd.Flags().StringVar(&perpID, "perp-id", "", "new perpetrator identifier (edit mode)")
	cmd.Flags().StringVar(&userID, "user-id", "", "new user identifier (edit mode)")
	cmd.Flags().StringVar(&outPath, "out", "edited.json", "path to write the result JSON")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "only decrypt the user's own records and write them to --out, do not rewrite")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("passphrase")

	return cmd
}
