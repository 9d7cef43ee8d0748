package utils // package utils provides token creation, verification and hashing helpers

import (
    "crypto/rand"   // jti generation for refresh tokens
    "crypto/sha256" // SHA-256 hashing for refresh token ledger keys
    "encoding/hex"  // hex encoding of digests
    "errors"        // sentinel error for verification failures
    "strconv"       // numeric subject parsing
    "time"          // expiry arithmetic

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrInvalidToken is returned by both Parse functions for every failure
// mode: malformed input, wrong signing algorithm, bad signature or
// expiry.  Collapsing them is deliberate: the caller must not be able to
// tell a tampered token from an expired one, and neither may the client.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short‑lived, carry the user's id and role, and are
// presented in the Authorization header.  They are never persisted
// server-side and cannot be revoked before they expire.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// RefreshToken represents a long‑lived signed token used to obtain new
// access tokens.  The Raw string is delivered to the client only inside an
// HTTP-only cookie; the ledger stores just its SHA‑256 hash.
type RefreshToken struct {
    Raw string    // serialized JWT returned to the client via cookie
    Exp time.Time // UTC expiration time
}

// AccessClaims are the decoded contents of a verified access token.
type AccessClaims struct {
    UserID uint64
    Role   string
}

// RefreshClaims are the decoded contents of a verified refresh token.
// Refresh tokens identify the user only; the role is re-read from the
// store when a new access token is minted so role changes take effect.
type RefreshClaims struct {
    UserID uint64
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The JWT
// includes the subject (sub), the role, expiration (exp) and issued at
// (iat).  Access tokens are signed with the access secret only.
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  userID,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs an HS256 JWT carrying the subject and
// a random jti.  It must be signed with the refresh secret, which is
// distinct from the access secret, so that compromise of one secret does
// not compromise the other token class.  The jti keeps two tokens issued
// to the same user in the same second distinct; the ledger keys rows by
// the token hash and requires it unique.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (RefreshToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
    jti, err := randomHex(16)
    if err != nil {
        return RefreshToken{}, err
    }
    claims := jwt.MapClaims{
        "sub": userID,
        "jti": jti,
        "exp": exp.Unix(),
        "iat": now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return RefreshToken{}, err
    }
    return RefreshToken{Raw: signed, Exp: exp}, nil
}

// ParseAccessToken verifies a serialized access token against the access
// secret and returns its claims.  Every failure maps to ErrInvalidToken.
func ParseAccessToken(secret, raw string) (AccessClaims, error) {
    claims, err := parseHS256(secret, raw)
    if err != nil {
        return AccessClaims{}, err
    }
    uid, ok := subjectID(claims)
    if !ok {
        return AccessClaims{}, ErrInvalidToken
    }
    role, ok := claims["role"].(string)
    if !ok || role == "" {
        return AccessClaims{}, ErrInvalidToken
    }
    return AccessClaims{UserID: uid, Role: role}, nil
}

// ParseRefreshToken verifies a serialized refresh token against the
// refresh secret and returns its claims.
func ParseRefreshToken(secret, raw string) (RefreshClaims, error) {
    claims, err := parseHS256(secret, raw)
    if err != nil {
        return RefreshClaims{}, err
    }
    uid, ok := subjectID(claims)
    if !ok {
        return RefreshClaims{}, ErrInvalidToken
    }
    return RefreshClaims{UserID: uid}, nil
}

// HashRefreshRaw returns the SHA-256 hash of the serialized refresh token
// as a hex string.  Only this hash is stored in the ledger, so a stolen
// database dump cannot be replayed as live refresh tokens.
func HashRefreshRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
    b := make([]byte, n)
    if _, err := rand.Read(b); err != nil {
        return "", err
    }
    return hex.EncodeToString(b), nil
}

// parseHS256 parses and validates a token, pinning the signing method to
// HMAC so an attacker cannot downgrade to "none" or swap algorithms.
func parseHS256(secret, raw string) (jwt.MapClaims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return nil, ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return nil, ErrInvalidToken
    }
    return claims, nil
}

// subjectID extracts the numeric subject claim.  JSON numbers decode as
// float64; some issuers encode the subject as a string.
func subjectID(claims jwt.MapClaims) (uint64, bool) {
    switch v := claims["sub"].(type) {
    case float64:
        if v < 0 {
            return 0, false
        }
        return uint64(v), true
    case string:
        n, err := strconv.ParseUint(v, 10, 64)
        return n, err == nil
    }
    return 0, false
}
