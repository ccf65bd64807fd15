// Package auth guards administrative endpoints with API keys.
//
// Keys are presented either as "Authorization: Bearer <key>" or in the
// X-API-Key header. The validator keeps only SHA-256 digests of the
// configured keys.
package auth
