package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/MarkoPoloResearchLab/stringkit/stringutil"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerOrigin        = "Origin"

	contentTypeJSON = "application/json"

	audienceApi    = "stringkit"
	issuerName     = "stringkit"
	tokenIDPrefix  = "tok_"
	corsMaxAgeSecs = 300
)

type accessClaims struct {
	jwt.RegisteredClaims
}

// issueAccessToken signs a bearer token for the /v1 API. The token id is a
// fresh unique id so individual tokens can be told apart in logs.
func issueAccessToken(signingKey []byte, lifetime time.Duration, currentTime time.Time) (string, error) {
	if len(signingKey) == 0 {
		return "", fmt.Errorf("missing %s", envKeyJwtHmacKey)
	}
	if lifetime <= 0 {
		return "", fmt.Errorf("token lifetime must be positive, got %s", lifetime)
	}
	accessTokenClaims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Audience:  jwt.ClaimStrings{audienceApi},
			IssuedAt:  jwt.NewNumericDate(currentTime),
			NotBefore: jwt.NewNumericDate(currentTime.Add(-1 * time.Second)),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(lifetime)),
			ID:        stringutil.UniqueID(tokenIDPrefix),
		},
	}
	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessTokenClaims)
	signedToken, signError := jwtToken.SignedString(signingKey)
	if signError != nil {
		return "", fmt.Errorf("sign token: %w", signError)
	}
	return signedToken, nil
}

func verifyAccessToken(rawToken string, signingKey []byte) (*accessClaims, error) {
	var parsedClaims accessClaims
	parsedJWT, parseTokenError := jwt.ParseWithClaims(rawToken, &parsedClaims,
		func(token *jwt.Token) (interface{}, error) {
			return signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audienceApi),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(timeNow),
	)
	if parseTokenError != nil {
		return nil, parseTokenError
	}
	if !parsedJWT.Valid {
		return nil, errors.New("token is not valid")
	}
	if parsedClaims.ID == "" {
		return nil, errors.New("token has no id")
	}
	return &parsedClaims, nil
}

func requireBearer(signingKey []byte, metrics *serviceMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(httpResponseWriter http.ResponseWriter, httpRequest *http.Request) {
			bearerAccessToken := parseBearer(httpRequest.Header.Get(headerAuthorization))
			if bearerAccessToken == "" {
				metrics.observeRejection(rejectionMissingBearer)
				httpErrorJSON(httpResponseWriter, http.StatusUnauthorized, rejectionMissingBearer)
				return
			}
			if _, verifyError := verifyAccessToken(bearerAccessToken, signingKey); verifyError != nil {
				metrics.observeRejection(rejectionInvalidToken)
				httpErrorJSON(httpResponseWriter, http.StatusUnauthorized, rejectionInvalidToken)
				return
			}
			next.ServeHTTP(httpResponseWriter, httpRequest)
		})
	}
}

// requireAllowedOrigin rejects browser calls from origins outside the
// allowlist. Requests without an Origin header are not browser calls and
// pass through.
func requireAllowedOrigin(allowedOrigins map[string]struct{}, metrics *serviceMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(httpResponseWriter http.ResponseWriter, httpRequest *http.Request) {
			originHeader := httpRequest.Header.Get(headerOrigin)
			if originHeader != "" {
				if _, isAllowed := allowedOrigins[originHeader]; !isAllowed {
					metrics.observeRejection(rejectionOriginNotAllowed)
					httpErrorJSON(httpResponseWriter, http.StatusForbidden, rejectionOriginNotAllowed)
					return
				}
			}
			next.ServeHTTP(httpResponseWriter, httpRequest)
		})
	}
}

func corsHandler(allowedOrigins map[string]struct{}) func(http.Handler) http.Handler {
	originList := make([]string, 0, len(allowedOrigins))
	for origin := range allowedOrigins {
		originList = append(originList, origin)
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: originList,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{headerAuthorization, headerContentType},
		MaxAge:         corsMaxAgeSecs,
	})
}
