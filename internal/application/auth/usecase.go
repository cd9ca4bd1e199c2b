package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/pkg/jwt"
)

// DefaultTTL vigencia de un token de operador cuando no se indica otra.
const DefaultTTL = 12 * time.Hour

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret string
	Issuer string
}

// AuthUseCase emite tokens para operadores del almoxarifado. La API solo los verifica;
// la emisión corre en herramientas internas (cmd/token).
type AuthUseCase struct {
	jwtCfg JWTConfig
	now    func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{jwtCfg: jwtCfg, now: time.Now}
}

// IssueOperatorToken genera un token para el operador. UserID vacío = uuid nuevo.
func (uc *AuthUseCase) IssueOperatorToken(in dto.IssueTokenRequest) (*dto.TokenResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidation(domain.RuleOperatorRequired, "nombre de operador requerido")
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		userID = uuid.New().String()
	}
	ttl := in.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	id := jwt.Identity{UserID: userID, Name: name, Role: strings.TrimSpace(in.Role)}
	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, id, ttl)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		Token:     token,
		UserID:    userID,
		Operator:  id.Operator(),
		ExpiresAt: uc.now().Add(ttl).UTC(),
	}, nil
}
