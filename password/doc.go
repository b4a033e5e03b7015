// Package password provides argon2id hashing and constant-time
// verification of PHC-encoded hashes.
//
// Stored hashes carry their own parameters, so verification works against
// records written under older configurations.
package password
