package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/lockpad/internal/jwt"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "key", Short: "Claves de firma RSA"}
	cmd.AddCommand(newKeyGenerateCmd(), newKeyVerifyCmd())
	return cmd
}

func newKeyGenerateCmd() *cobra.Command {
	var (
		outDir string
		bits   int
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Genera private.pem y public.pem",
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := jwt.GenerateRSA(bits)
			if err != nil {
				return err
			}
			privPEM, pubPEM, err := jwt.EncodeKeyPair(priv)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o700); err != nil {
				return err
			}
			privPath := filepath.Join(outDir, "private.pem")
			pubPath := filepath.Join(outDir, "public.pem")
			if err := writeNew(privPath, privPEM, 0o600); err != nil {
				return err
			}
			if err := writeNew(pubPath, pubPEM, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "private: %s\npublic:  %s\n", privPath, pubPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "Directorio destino")
	cmd.Flags().IntVar(&bits, "bits", 2048, "Tamaño de la clave")
	return cmd
}

// writeNew no pisa claves existentes.
func writeNew(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// readKey acepta PEM inline o ruta.
func readKey(v string) ([]byte, error) {
	if strings.HasPrefix(strings.TrimSpace(v), "-----BEGIN") {
		return []byte(v), nil
	}
	return os.ReadFile(v)
}

func newKeyVerifyCmd() *cobra.Command {
	var pub, secret string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verifica que el par de claves firme y valide, e imprime el JWK",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret is required")
			}
			privPEM, err := readKey(secret)
			if err != nil {
				return err
			}
			var pubPEM []byte
			if pub != "" {
				if pubPEM, err = readKey(pub); err != nil {
					return err
				}
			}
			kp, err := jwt.LoadKeyPair(privPEM, pubPEM)
			if err != nil {
				return err
			}
			if err := kp.SelfCheck(cmd.Context()); err != nil {
				return err
			}
			out, _ := json.MarshalIndent(kp.Public.JWK(), "", "  ")
			fmt.Fprintf(cmd.OutOrStdout(), "ok\n%s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&pub, "public", "", "Clave pública (PEM o ruta); se deriva si falta")
	cmd.Flags().StringVar(&secret, "secret", "", "Clave privada (PEM o ruta)")
	return cmd
}
