// Command token emite un JWT de operador firmado con JWT_SECRET para llamar a la API.
//
//	go run ./cmd/token -name "Maria Souza" -role almoxarife -ttl 8h
package main

import (
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/application/auth"
	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/pkg/config"
	"github.com/jhoicas/almoxarifado-api/pkg/logger"
)

func main() {
	name := flag.String("name", "", "nombre del operador (created_by)")
	userID := flag.String("id", "", "id del operador; vacío = uuid nuevo")
	role := flag.String("role", "", "rol informativo")
	ttl := flag.Duration("ttl", auth.DefaultTTL, "vigencia del token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, App: "token", Out: os.Stderr})

	uc := auth.NewAuthUseCase(auth.JWTConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	out, err := uc.IssueOperatorToken(dto.IssueTokenRequest{
		UserID: *userID,
		Name:   *name,
		Role:   *role,
		TTL:    *ttl,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("emitir token")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("escribir token")
	}
	log.Info().Str("operator", out.Operator).Str("expires_at", out.ExpiresAt.Format(time.RFC3339)).Msg("token emitido")
}
