package x402

import (
	"errors"
	"testing"
)

func TestValidateNetwork(t *testing.T) {
	tests := []struct {
		network  string
		wantType NetworkType
		wantErr  bool
	}{
		{"base", NetworkTypeEVM, false},
		{"base-sepolia", NetworkTypeEVM, false},
		{"solana", NetworkTypeSVM, false},
		{"solana-devnet", NetworkTypeSVM, false},
		{"", NetworkTypeUnknown, true},
		{"polygon", NetworkTypeUnknown, true},
		{"Base", NetworkTypeUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.network, func(t *testing.T) {
			netType, err := ValidateNetwork(tt.network)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateNetwork(%q) error = %v, wantErr %v", tt.network, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnsupportedNetwork) {
				t.Errorf("error should wrap ErrUnsupportedNetwork, got %v", err)
			}
			if netType != tt.wantType {
				t.Errorf("ValidateNetwork(%q) = %v, want %v", tt.network, netType, tt.wantType)
			}
		})
	}
}

func TestChainConfigUSDCDecimals(t *testing.T) {
	for _, cfg := range []ChainConfig{BaseMainnet, BaseSepolia, SolanaMainnet, SolanaDevnet} {
		if cfg.Decimals != 6 {
			t.Errorf("%s: USDC decimals = %d, want 6", cfg.NetworkID, cfg.Decimals)
		}
		if cfg.USDCAddress == "" {
			t.Errorf("%s: missing USDC address", cfg.NetworkID)
		}
	}
}
