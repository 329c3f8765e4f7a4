// Command seed writes a handful of credential records into Vault for
// local development, the way sql/seed_data.go seeded a local Postgres
// for the teacher's app — same connect-then-insert shape, aimed at
// internal/secretstore instead of a SQL schema.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/meridianpay/authgateway/internal/credential"
	"github.com/meridianpay/authgateway/internal/secretstore"
)

var (
	vaultAddr = flag.String("vault-addr", "http://127.0.0.1:8200", "Vault address")
	vaultToken = flag.String("vault-token", "", "Vault token")
)

type seedClient struct {
	id          string
	secret      string
	permissions []string
}

func main() {
	flag.Parse()
	if *vaultToken == "" {
		log.Fatal("-vault-token is required")
	}

	ctx := context.Background()
	store, err := secretstore.NewVaultStore(ctx, secretstore.VaultConfig{
		Address:    *vaultAddr,
		AuthMethod: "token",
		Token:      *vaultToken,
	})
	if err != nil {
		log.Fatalf("connect to vault: %v", err)
	}
	if err := store.Authenticate(ctx); err != nil {
		log.Fatalf("authenticate to vault: %v", err)
	}

	clients := []seedClient{
		{id: "acme-corp", secret: "dev-secret-acme", permissions: []string{"payments.read", "payments.write"}},
		{id: "widgets-inc", secret: "dev-secret-widgets", permissions: []string{"payments.read"}},
	}

	for _, c := range clients {
		hash, err := credential.HashSecret(c.secret)
		if err != nil {
			log.Fatalf("hash secret for %s: %v", c.id, err)
		}

		record := credential.Record{
			ClientID:    c.id,
			Version:     "1",
			SecretHash:  hash,
			Status:      credential.StatusActive,
			Permissions: c.permissions,
			CreatedAt:   time.Now(),
		}
		raw, err := json.Marshal(record)
		if err != nil {
			log.Fatalf("encode record for %s: %v", c.id, err)
		}

		path := secretstore.CredentialPath(c.id)
		if err := store.PutSecret(ctx, path, raw); err != nil {
			log.Fatalf("write %s: %v", c.id, err)
		}
		fmt.Printf("seeded client %q (secret: %q)\n", c.id, c.secret)
	}
}
