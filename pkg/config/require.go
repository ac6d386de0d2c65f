package config

import (
	"fmt"
	"log"
	"strings"
)

// Validate reports every required setting that is missing.
func (c Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(c.JWTAccessSecret) == 0 {
		missing = append(missing, "JWT_SECRET")
	}
	if len(c.JWTRefreshSecret) == 0 {
		missing = append(missing, "JWT_REFRESH_SECRET")
	}
	if (c.SuperAdminUsername == "") != (c.SuperAdminPassword == "") {
		missing = append(missing, "SUPERADMIN_USERNAME and SUPERADMIN_PASSWORD together")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c Config) MustValidate() {
	if err := c.Validate(); err != nil {
		log.Fatal(err)
	}
}
