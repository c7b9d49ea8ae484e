// Package auth verifies bearer tokens and turns them into domain principals.
//
// Production traffic carries Firebase Authentication ID tokens, which are
// RS256 JWTs checked against Google's published x509 certificates. For local
// development an HMAC verifier accepts HS256 tokens minted with a shared secret.
package auth
