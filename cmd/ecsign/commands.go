package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mahdiidarabi/ecsign/pkg/ecsign"
)

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	return ecsign.HexToBytes(s)
}

func addHashFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("hash", "", "Message hash in hex")
	flags.String("message", "", "Message to hash before signing")
	flags.String("hash-func", ecsign.HashSHA256, "Hash applied to --message (sha256 or keccak256)")
}

// hash returns --hash, or the digest of --message.
func (c *cli) hash() ([]byte, error) {
	if h := c.v.GetString("hash"); h != "" {
		hash, err := decodeHex(h)
		if err != nil {
			return nil, errors.Wrap(err, "invalid --hash")
		}
		return hash, nil
	}
	if m := c.v.GetString("message"); m != "" {
		return ecsign.HashMessage(c.v.GetString("hash-func"), []byte(m))
	}
	return nil, errors.New("must supply --hash or --message")
}

func (c *cli) privateKey() (*ecsign.PrivateKey, error) {
	s := c.v.GetString("key")
	if s == "" {
		return nil, errors.Errorf("must supply --key or %s_KEY", envPrefix)
	}
	key, err := ecsign.PrivKeyFromHex(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}
	return key, nil
}

func (c *cli) signer() (*ecsign.Signer, error) {
	opts := ecsign.SignOptions{
		Canonical:     !c.v.GetBool("non-canonical"),
		DER:           !c.v.GetBool("compact"),
		RandomEntropy: c.v.GetBool("random-entropy"),
	}
	if e := c.v.GetString("extra-entropy"); e != "" {
		extra, err := decodeHex(e)
		if err != nil {
			return nil, errors.Wrap(err, "invalid --extra-entropy")
		}
		opts.ExtraEntropy = extra
	}
	return ecsign.NewSigner().WithOptions(opts).WithLogger(c.logger), nil
}

func addSignFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("key", "", "Private key in hex (64 characters)")
	flags.Bool("compact", false, "Output the 64-byte compact encoding instead of DER")
	flags.Bool("non-canonical", false, "Do not normalize S to the lower half of the order")
	flags.String("extra-entropy", "", "32 bytes of hex mixed into the nonce")
	flags.Bool("random-entropy", false, "Mix 32 random bytes into the nonce")
}

func (c *cli) signCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a message hash",
		Long:  `Sign a message hash with a deterministic RFC 6979 nonce. Requires '--key' and one of '--hash' or '--message'.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := c.privateKey()
			if err != nil {
				return err
			}
			defer key.Zero()

			hash, err := c.hash()
			if err != nil {
				return err
			}
			signer, err := c.signer()
			if err != nil {
				return err
			}

			sig, recoveryID, err := signer.SignRecoverable(hash, key)
			if err != nil {
				return errors.Wrap(err, "signing failed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signature: %s\n", ecsign.BytesToHex(sig))
			fmt.Fprintf(cmd.OutOrStdout(), "recovery_id: %d\n", recoveryID)
			return nil
		},
	}
	addSignFlags(cmd)
	addHashFlags(cmd)
	return cmd
}

// parseSignature accepts either encoding; 64 bytes are taken as compact.
func parseSignature(s string) (*ecsign.Signature, error) {
	b, err := decodeHex(s)
	if err != nil {
		return nil, err
	}
	if len(b) == ecsign.CompactSigLen {
		return ecsign.ParseCompactSignature(b)
	}
	return ecsign.ParseDERSignature(b)
}

func (c *cli) verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a signature",
		Long:  `Verify a DER or compact signature against a public key. Requires '--pubkey', '--signature' and one of '--hash' or '--message'.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pubBytes, err := decodeHex(c.v.GetString("pubkey"))
			if err != nil {
				return errors.Wrap(err, "invalid --pubkey")
			}
			pub, err := ecsign.ParsePubKey(pubBytes)
			if err != nil {
				return err
			}
			sig, err := parseSignature(c.v.GetString("signature"))
			if err != nil {
				return errors.Wrap(err, "invalid --signature")
			}
			hash, err := c.hash()
			if err != nil {
				return err
			}

			if !ecsign.Verify(sig, hash, pub) {
				return errors.New("signature is invalid")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signature is valid")
			return nil
		},
	}
	cmd.Flags().String("pubkey", "", "SEC1 encoded public key in hex")
	cmd.Flags().String("signature", "", "DER or compact signature in hex")
	addHashFlags(cmd)
	return cmd
}

func (c *cli) pubkeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pubkey",
		Short: "Print the public key of a private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := c.privateKey()
			if err != nil {
				return err
			}
			defer key.Zero()

			pub, err := key.PubKey()
			if err != nil {
				return err
			}
			serialized := pub.SerializeCompressed()
			if c.v.GetBool("uncompressed") {
				serialized = pub.SerializeUncompressed()
			}
			fmt.Fprintln(cmd.OutOrStdout(), ecsign.BytesToHex(serialized))
			return nil
		},
	}
	cmd.Flags().String("key", "", "Private key in hex (64 characters)")
	cmd.Flags().Bool("uncompressed", false, "Print the 65-byte uncompressed form")
	return cmd
}

func (c *cli) recoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Recover the public key from a signature",
		Long:  `Recover the signing public key. Requires '--signature', '--recovery-id' and one of '--hash' or '--message'.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := parseSignature(c.v.GetString("signature"))
			if err != nil {
				return errors.Wrap(err, "invalid --signature")
			}
			hash, err := c.hash()
			if err != nil {
				return err
			}
			recoveryID := c.v.GetInt("recovery-id")
			if recoveryID < 0 || recoveryID > 3 {
				return errors.Errorf("--recovery-id must be in [0, 3], got %d", recoveryID)
			}

			pub, err := ecsign.RecoverPublicKey(sig, byte(recoveryID), hash)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ecsign.BytesToHex(pub.SerializeCompressed()))
			return nil
		},
	}
	cmd.Flags().String("signature", "", "DER or compact signature in hex")
	cmd.Flags().Int("recovery-id", 0, "Recovery id returned by sign")
	addHashFlags(cmd)
	return cmd
}

// batchOutput is one line of batch output.
type batchOutput struct {
	ID         string `json:"id"`
	Signature  string `json:"signature,omitempty"`
	RecoveryID byte   `json:"recovery_id"`
	Error      string `json:"error,omitempty"`
}

func (c *cli) batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Sign every request of a JSON or CSV file",
		Long:  `Sign requests loaded from a file and print one JSON object per request. Requires '--key' and '--input'.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := c.privateKey()
			if err != nil {
				return err
			}
			defer key.Zero()

			var parser ecsign.RequestParser
			switch format := c.v.GetString("format"); format {
			case "json":
				parser = &ecsign.JSONParser{HashFunc: c.v.GetString("hash-func")}
			case "csv":
				parser = &ecsign.CSVParser{HashFunc: c.v.GetString("hash-func")}
			default:
				return errors.Errorf("unsupported --format %q", format)
			}

			input := c.v.GetString("input")
			if input == "" {
				return errors.New("must supply --input")
			}
			requests, err := parser.ParseRequests(input)
			if err != nil {
				return errors.Wrapf(err, "failed to load requests from %s", input)
			}

			signer, err := c.signer()
			if err != nil {
				return err
			}
			results, err := signer.SignBatch(context.Background(), key, requests, c.v.GetInt("workers"))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			failed := 0
			for _, result := range results {
				out := batchOutput{ID: result.ID, RecoveryID: result.RecoveryID}
				if result.Err != nil {
					out.Error = result.Err.Error()
					failed++
				} else {
					out.Signature = ecsign.BytesToHex(result.Signature)
				}
				if err := enc.Encode(out); err != nil {
					return errors.Wrap(err, "failed to write result")
				}
			}
			if failed > 0 {
				return errors.Errorf("%d of %d requests failed", failed, len(results))
			}
			return nil
		},
	}
	addSignFlags(cmd)
	cmd.Flags().String("input", "", "Path to the requests file")
	cmd.Flags().String("format", "json", "Requests file format (json or csv)")
	cmd.Flags().String("hash-func", ecsign.HashSHA256, "Hash applied to request messages (sha256 or keccak256)")
	cmd.Flags().Int("workers", 0, "Number of parallel workers (0 = one per CPU)")
	return cmd
}
