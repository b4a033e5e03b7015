// Command useradd seeds a user record with a hashed password. Records
// can no longer be hand-edited into the store because only the argon2id
// hash of a password is persisted.
//
//	useradd [-file users.json] <id> <password>
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	goTOTP "github.com/MrEthical07/goTOTP"
	"github.com/MrEthical07/goTOTP/password"
	"github.com/MrEthical07/goTOTP/store"
)

func main() {
	file := flag.String("file", "users.json", "path of the JSON user store")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: useradd [-file users.json] <id> <password>")
		os.Exit(2)
	}
	id, pass := flag.Arg(0), flag.Arg(1)

	pc := goTOTP.DefaultConfig().Password
	hasher, err := password.NewArgon2(password.Config{
		Memory:      pc.Memory,
		Time:        pc.Time,
		Parallelism: pc.Parallelism,
		SaltLength:  pc.SaltLength,
		KeyLength:   pc.KeyLength,
	})
	if err != nil {
		log.Fatal("argon2 init:", err)
	}

	hash, err := hasher.Hash(pass)
	if err != nil {
		log.Fatal("hash:", err)
	}

	users, err := store.NewFile(*file)
	if err != nil {
		log.Fatal("user store:", err)
	}

	err = users.Put(context.Background(), goTOTP.UserRecord{
		ID:           id,
		PasswordHash: hash,
		TwoFactor:    goTOTP.TwoFactor{Mode: goTOTP.TwoFactorDisabled},
	})
	if err != nil {
		log.Fatal("put:", err)
	}

	fmt.Printf("user %q written to %s\n", id, *file)
}
