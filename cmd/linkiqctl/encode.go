package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/rmja/linkiq/stack"
	"github.com/rmja/linkiq/turbo"
	"github.com/rmja/linkiq/wmbus"
)

func runEncode(args []string) error {
	flags := pflag.NewFlagSet("encode", pflag.ContinueOnError)
	rateFlag := flags.StringP("rate", "r", "half", "turbo code rate: half or third")
	manufacturer := flags.Uint16P("manufacturer", "m", 0, "manufacturer code")
	serial := flags.Uint32P("serial", "s", 0, "device serial number")
	version := flags.Uint8P("version", "v", 1, "device version byte")
	deviceType := flags.Uint8P("device-type", "t", 0, "device type byte")
	dataHex := flags.StringP("data", "d", "", "application payload, as hex")
	prioritized := flags.BoolP("prioritized", "p", false, "set the MBAL prioritized control bit")
	installation := flags.Bool("installation", false, "send an installation request instead of unsolicited application data")
	if err := flags.Parse(args); err != nil {
		return err
	}

	rate, err := parseRate(*rateFlag)
	if err != nil {
		return err
	}

	data, err := hex.DecodeString(*dataHex)
	if err != nil {
		return fmt.Errorf("linkiqctl: invalid --data: %w", err)
	}

	apl := stack.Apl{}
	aplBytes, err := apl.Write(data)
	if err != nil {
		return err
	}

	functionCode := stack.SendUnsolicitedApplicationData
	if *installation {
		functionCode = stack.SendInstallationRequest
	}

	mbal := stack.Mbal{
		Control: stack.MbalControl{IsPrioritized: *prioritized},
		Address: wmbus.Address{
			ManufacturerCode: *manufacturer,
			SerialNumber:     *serial,
			Version:          *version,
			DeviceType:       *deviceType,
		},
		Command: stack.MbalCommand{FunctionCode: functionCode},
		Data:    aplBytes,
	}
	mbalBytes, err := mbal.Bytes()
	if err != nil {
		return err
	}

	var phl stack.Phl
	frame, err := phl.Write(rate, mbalBytes)
	if err != nil {
		return err
	}

	fmt.Println(hex.EncodeToString(frame))
	return nil
}

func parseRate(s string) (turbo.CodeRate, error) {
	switch s {
	case "half":
		return turbo.OneHalf, nil
	case "third":
		return turbo.OneThird, nil
	default:
		return 0, fmt.Errorf("linkiqctl: unknown rate %q, want half or third", s)
	}
}
