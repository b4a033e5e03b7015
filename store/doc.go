// Package store provides goTOTP.UserStore implementations sharing one
// persisted record layout:
//
//	{"password": "<phc hash>",
//	 "twoFactor": {"enabled": bool, "secret": string|null, "tempSecret": string|null}}
//
// Memory backs tests and demos, File persists a single JSON document to
// disk, and Redis keeps one value per user and uses optimistic WATCH
// transactions so UpdateTwoFactor is serialized per user across
// processes. Memory and File serialize updates with an in-process mutex.
package store
