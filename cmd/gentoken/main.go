// Command gentoken mints a signed token out-of-band, for seeding admin access
// and for manual testing of the protected routes.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/spf13/viper"

	"insurance/internal/services"
)

func main() {
	username := flag.String("username", "admin", "username claim")
	role := flag.String("role", "admin", "role claim")
	sub := flag.String("sub", "12345", "subject claim")
	flag.Parse()

	viper.SetDefault("JWT_SECRET", "insurance_dev_secret")
	viper.AutomaticEnv()

	authService := services.NewAuthService(nil, viper.GetString("JWT_SECRET"))
	token, err := authService.GenerateToken(*username, *role, *sub)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Println(token)
}
