package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

const matchTokenIssuer = "battleship-solo"

type matchClaims struct {
	MatchUuid string `json:"match_uuid"`
	jwt.RegisteredClaims
}

// issueMatchToken signs a token a client presents to resume its match
// after reconnecting.
func (s *Server) issueMatchToken(matchUuid string) (string, error) {
	now := time.Now()
	claims := matchClaims{
		MatchUuid: matchUuid,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    matchTokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenLifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.tokenSecret)
}

func (s *Server) parseMatchToken(tokenStr string) (string, error) {
	claims := matchClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.tokenSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(matchTokenIssuer))
	if err != nil {
		return "", cerr.ErrTokenInvalid(err.Error())
	}
	if !token.Valid || claims.MatchUuid == "" {
		return "", cerr.ErrTokenInvalid("missing match uuid")
	}
	return claims.MatchUuid, nil
}
