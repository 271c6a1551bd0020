package auth

import "time"

// The OAuth state parameter binds the Sketchfab callback to the user who
// started the flow. It is a signed token rather than plain JSON so a forged
// callback cannot attach someone else's authorization code to an arbitrary
// uid. Sketchfab echoes the value opaquely, so the format is ours to choose.

const stateIssuer = "sketchfab-proxy/oauth-state"

// StateLifetime covers one authorization round-trip through the browser.
const StateLifetime = 10 * time.Minute

func EncodeState(uid, secret string) (string, error) {
	return CreateToken(uid, TokenConfig{
		Secret: secret,
		Expiry: StateLifetime,
		Issuer: stateIssuer,
	})
}

// DecodeState returns the uid bound into a state value, or an error for
// anything unsigned, tampered with, expired, or minted as a different token
// kind. Callers treat any error as a bad request.
func DecodeState(state, secret string) (string, error) {
	claims, err := VerifyToken(state, TokenConfig{
		Secret: secret,
		Issuer: stateIssuer,
	})
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
