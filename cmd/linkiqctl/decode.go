package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/rmja/linkiq/stack"
)

func runDecode(args []string) error {
	flags := pflag.NewFlagSet("decode", pflag.ContinueOnError)
	frameHex := flags.StringP("frame", "f", "", "coded radio frame, as hex")
	if err := flags.Parse(args); err != nil {
		return err
	}

	frame, err := hex.DecodeString(*frameHex)
	if err != nil {
		return fmt.Errorf("linkiqctl: invalid --frame: %w", err)
	}

	var phl stack.Phl
	mbalBytes, rate, err := phl.Read(frame)
	if err != nil {
		return fmt.Errorf("linkiqctl: phl: %w", err)
	}

	mbal, err := stack.ParseMbal(mbalBytes)
	if err != nil {
		return fmt.Errorf("linkiqctl: mbal: %w", err)
	}

	var apl stack.Apl
	data, err := apl.Read(mbal.Data)
	if err != nil {
		return err
	}

	log.Info("decoded frame",
		"rate", rate,
		"manufacturer", mbal.Address.ManufacturerID(),
		"serial", mbal.Address.SerialNumber,
		"data", hex.EncodeToString(data))
	return nil
}
