package main

import (
	"flag"
	"fmt"

	"github.com/EternisAI/datacollect/internal/api/http"
	"github.com/EternisAI/datacollect/internal/auth"
)

func runCommand(name string, args []string) error {
	switch name {
	case "token":
		return runToken(args)
	case "hash-key":
		return runHashKey(args)
	case "version":
		fmt.Println(AppVersion)
		return nil
	default:
		return fmt.Errorf("unknown command %q (expected token, hash-key or version)", name)
	}
}

func runToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := fs.String("subject", "", "Token subject")
	role := fs.String("role", http.AdminRole, "Token role")
	ttl := fs.Duration("ttl", 0, "Token lifetime (defaults to auth.token_ttl)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *subject == "" {
		return fmt.Errorf("--subject is required")
	}

	if err := loadConfig(); err != nil {
		return err
	}

	authConfig := config.Auth
	if *ttl > 0 {
		authConfig.TokenTTL = *ttl
	}

	token, err := auth.GenerateToken(authConfig, *subject, *role)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}
	fmt.Println(token)
	return nil
}

func runHashKey(args []string) error {
	fs := flag.NewFlagSet("hash-key", flag.ContinueOnError)
	key := fs.String("key", "", "API key to hash")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *key == "" {
		return fmt.Errorf("--key is required")
	}

	hashed, err := auth.HashAPIKey(*key)
	if err != nil {
		return fmt.Errorf("failed to hash key: %w", err)
	}
	fmt.Println(hashed)
	return nil
}
