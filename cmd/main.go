// cmd/main.go
package main

import (
	"bizpilot-api/app"
)

// @title           BizPilot Auth API
// @version         1.0
// @description     Session and identity service: token issuance, rotation and revocation.

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
