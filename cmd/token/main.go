// Command token mints a service JWT for API access using the configured
// signing secret. Run it on the server host:
//
//	token -name ap-bot -role member
package main

import (
	"flag"
	"fmt"
	"log"

	"apflow/internal/config"
	"apflow/internal/domain"
	"apflow/internal/service"
)

func main() {
	name := flag.String("name", "", "subject name for the token")
	role := flag.String("role", "member", "role claim: admin or member")
	flag.Parse()

	if *name == "" {
		log.Fatal("-name is required")
	}
	if *role != string(domain.RoleAdmin) && *role != string(domain.RoleMember) {
		log.Fatalf("invalid role %q: must be admin or member", *role)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	authSvc := service.NewAuthService(cfg.JWT)
	token, err := authSvc.IssueToken(*name, domain.UserRole(*role))
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}

	fmt.Println(token.AccessToken)
	fmt.Printf("expires: %s\n", token.ExpiresAt)
}
