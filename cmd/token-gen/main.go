package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"recurpay.backend/internal/config"
	"recurpay.backend/pkg/jwt"
)

var (
	printfFn   = fmt.Printf
	fatalfFn   = log.Fatalf
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
)

type options struct {
	account common.Address
	role    string
	secret  string
}

func parseOptions(args []string, cfg *config.Config) (options, error) {
	fs := flag.NewFlagSet("token-gen", flag.ContinueOnError)
	account := fs.String("account", "", "account address the token is issued for")
	role := fs.String("role", "", "optional role claim")
	secret := fs.String("secret", cfg.JWT.Secret, "signing secret (defaults to JWT_SECRET)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if !common.IsHexAddress(*account) {
		return options{}, fmt.Errorf("invalid --account %q", *account)
	}
	if *secret == "" {
		return options{}, errors.New("signing secret is empty")
	}
	return options{
		account: common.HexToAddress(*account),
		role:    *role,
		secret:  *secret,
	}, nil
}

func generateToken(opts options, cfg *config.Config) (string, error) {
	return jwt.NewJWTService(opts.secret, cfg.JWT.AccessExpiry).GenerateToken(opts.account, opts.role)
}

func main() {
	_ = loadDotenv()
	cfg := loadCfg()

	opts, err := parseOptions(os.Args[1:], cfg)
	if err != nil {
		fatalfFn("Invalid arguments: %v", err)
		return
	}

	token, err := generateToken(opts, cfg)
	if err != nil {
		fatalfFn("Failed to generate token: %v", err)
		return
	}

	printfFn("Account: %s\n", opts.account.Hex())
	printfFn("Expires in: %s\n", cfg.JWT.AccessExpiry)
	printfFn("Bearer Token: %s\n", token)
}
