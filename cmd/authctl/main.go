package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, []*http.Cookie, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, resp.Cookies(), nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func printCookies(cookies []*http.Cookie) {
	for _, ck := range cookies {
		if ck.Name == "accessToken" || ck.Name == "refreshToken" {
			fmt.Printf("%s=%s\n", ck.Name, ck.Value)
		}
	}
}

func main() {
	var (
		baseURL = envOr("AUTHKIT_URL", "http://localhost:8080")
		out     = envOr("AUTHKIT_OUT", "text")
		timeout = 30 * time.Second
	)

	root := &cobra.Command{
		Use:   "authctl",
		Short: "CLI para operar el servicio de auth (vía /v1/auth)",
	}

	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del servicio (env AUTHKIT_URL)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	httpClient := &http.Client{Timeout: timeout}
	cl := &client{BaseURL: baseURL, OutFormat: out, HTTP: httpClient}

	// ping: usa el liveness endpoint
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Ping al servicio",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, _, err := cl.do("GET", "/healthz", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("ping fallo: status=%d body=%s", status, string(body))
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, body)
			return nil
		},
	}

	// sign-up
	var suName, suEmail, suPassword string
	signUpCmd := &cobra.Command{
		Use:   "sign-up",
		Short: "Registrar un usuario nuevo",
		RunE: func(cmd *cobra.Command, args []string) error {
			if suEmail == "" || suPassword == "" {
				return fmt.Errorf("--email y --password son requeridos")
			}
			b, _ := json.Marshal(map[string]string{
				"name": suName, "email": suEmail, "password": suPassword,
			})
			status, body, _, err := cl.do("POST", "/v1/auth/sign-up", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("sign-up fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	signUpCmd.Flags().StringVar(&suName, "name", "", "Nombre del usuario")
	signUpCmd.Flags().StringVar(&suEmail, "email", "", "Email del usuario")
	signUpCmd.Flags().StringVar(&suPassword, "password", "", "Password del usuario")

	// sign-in
	var siEmail, siPassword string
	signInCmd := &cobra.Command{
		Use:   "sign-in",
		Short: "Login con email y password (imprime las cookies de sesión)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if siEmail == "" || siPassword == "" {
				return fmt.Errorf("--email y --password son requeridos")
			}
			b, _ := json.Marshal(map[string]string{
				"email": siEmail, "password": siPassword,
			})
			status, body, cookies, err := cl.do("POST", "/v1/auth/sign-in", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("sign-in fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			printCookies(cookies)
			return nil
		},
	}
	signInCmd.Flags().StringVar(&siEmail, "email", "", "Email del usuario")
	signInCmd.Flags().StringVar(&siPassword, "password", "", "Password del usuario")

	// verify-email
	var veToken string
	verifyCmd := &cobra.Command{
		Use:   "verify-email",
		Short: "Consumir un token de verificación (abre la primera sesión)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if veToken == "" {
				return fmt.Errorf("--token es requerido")
			}
			b, _ := json.Marshal(map[string]string{"token": veToken})
			status, body, cookies, err := cl.do("POST", "/v1/auth/verify-email", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("verify-email fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			printCookies(cookies)
			return nil
		},
	}
	verifyCmd.Flags().StringVar(&veToken, "token", "", "Token del link de verificación")

	// refresh
	var rfToken string
	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Renovar sesión con un refresh token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if rfToken == "" {
				return fmt.Errorf("--refresh-token es requerido")
			}
			url := strings.TrimRight(cl.BaseURL, "/") + "/v1/auth/refresh-token"
			req, err := http.NewRequest("POST", url, nil)
			if err != nil {
				return err
			}
			req.AddCookie(&http.Cookie{Name: "refreshToken", Value: rfToken})
			resp, err := cl.HTTP.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode/100 != 2 {
				return fmt.Errorf("refresh fallo: status=%d body=%s", resp.StatusCode, string(body))
			}
			cl.print(resp.StatusCode, body)
			printCookies(resp.Cookies())
			return nil
		},
	}
	refreshCmd.Flags().StringVar(&rfToken, "refresh-token", "", "Refresh token (cookie refreshToken)")

	root.AddCommand(pingCmd)
	root.AddCommand(signUpCmd)
	root.AddCommand(signInCmd)
	root.AddCommand(verifyCmd)
	root.AddCommand(refreshCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
