package main

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/rmja/linkiq/stack"
	"github.com/rmja/linkiq/wmbus"
)

// runDemo loads a fixture file, encodes each example through the PHY stack
// and immediately decodes it back, reporting any mismatch. It's a quick
// offline sanity check of the full encode/decode round trip.
func runDemo(args []string) error {
	flags := pflag.NewFlagSet("demo", pflag.ContinueOnError)
	fixtures := flags.StringP("fixtures", "f", "", "path to the examples YAML fixture")
	if err := flags.Parse(args); err != nil {
		return err
	}

	examples, err := loadExamples(*fixtures)
	if err != nil {
		return err
	}

	for _, ex := range examples {
		rate, err := parseRate(ex.Rate)
		if err != nil {
			return fmt.Errorf("linkiqctl: example %s: %w", ex.Name, err)
		}
		data, err := hex.DecodeString(ex.DataHex)
		if err != nil {
			return fmt.Errorf("linkiqctl: example %s: %w", ex.Name, err)
		}

		apl := stack.Apl{}
		aplBytes, err := apl.Write(data)
		if err != nil {
			return err
		}

		functionCode := stack.SendUnsolicitedApplicationData
		if ex.IsInstallation {
			functionCode = stack.SendInstallationRequest
		}

		mbal := stack.Mbal{
			Control: stack.MbalControl{IsPrioritized: ex.IsPrioritized},
			Address: wmbus.Address{
				ManufacturerCode: ex.Manufacturer,
				SerialNumber:     ex.Serial,
				Version:          ex.Version,
				DeviceType:       ex.DeviceType,
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
			return fmt.Errorf("linkiqctl: example %s: encode: %w", ex.Name, err)
		}

		decodedMbal, decodedRate, err := phl.Read(frame)
		if err != nil {
			return fmt.Errorf("linkiqctl: example %s: decode: %w", ex.Name, err)
		}
		if decodedRate != rate {
			return fmt.Errorf("linkiqctl: example %s: rate mismatch", ex.Name)
		}
		if !bytes.Equal(decodedMbal, mbalBytes) {
			return fmt.Errorf("linkiqctl: example %s: payload mismatch", ex.Name)
		}
		got, err := stack.ParseMbal(decodedMbal)
		if err != nil {
			return fmt.Errorf("linkiqctl: example %s: %w", ex.Name, err)
		}

		log.Info("round trip ok", "example", ex.Name, "manufacturer", got.Address.ManufacturerID(), "serial", got.Address.SerialNumber)
	}

	return nil
}
