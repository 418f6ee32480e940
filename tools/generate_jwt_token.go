// tools/generate_jwt_token.go
// Mints a bearer token for MCP clients of the http transport.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	subject := flag.String("subject", "mcp-client", "client id recorded in logs and the call journal")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secretKey := os.Getenv("JWT_SECRET_KEY")
	if secretKey == "" {
		fmt.Println("Error: JWT_SECRET_KEY environment variable not set")
		fmt.Println("Usage: JWT_SECRET_KEY=your-secret go run ./tools -subject my-agent")
		os.Exit(1)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    "meta-ads-mcp",
		Subject:   *subject,
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretKey))
	if err != nil {
		fmt.Printf("Error signing token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(tokenString)
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Subject:", claims.Subject)
	fmt.Fprintln(os.Stderr, "Expires:", claims.ExpiresAt.Time.Format(time.RFC3339))
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Example:")
	fmt.Fprintf(os.Stderr, "  curl -H \"Authorization: Bearer %s\" -H \"X-Meta-Access-Token: $META_TOKEN\" http://localhost:8080/mcp\n", tokenString)
}
