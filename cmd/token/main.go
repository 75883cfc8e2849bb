// Command token prints an identity token for a booking submitter, for
// servers running with IDENTITY_JWT_SECRET set.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/theatre-booking-calendar/internal/utils"
)

func main() {
	_ = godotenv.Load()

	subject := flag.String("sub", "", "identity the token names")
	ttl := flag.Duration("ttl", 30*24*time.Hour, "token lifetime; 0 for no expiry")
	flag.Parse()

	tok, err := utils.NewIdentityToken(os.Getenv("IDENTITY_JWT_SECRET"), *subject, *ttl)
	if err != nil {
		logrus.WithError(err).Fatal("Could not issue token")
	}
	fmt.Println(tok.Token)
	if !tok.Exp.IsZero() {
		logrus.WithField("expires", tok.Exp.Format(time.RFC3339)).Info("Token issued")
	}
}
