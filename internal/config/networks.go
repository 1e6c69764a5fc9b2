package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProgramAddresses 表示某个网络下各合约与代币的地址
type ProgramAddresses struct {
	Mint      string `yaml:"mint"`       // memo-mint 程序
	Burn      string `yaml:"burn"`       // memo-burn 程序
	Chat      string `yaml:"chat"`       // memo-chat 程序
	Profile   string `yaml:"profile"`    // memo-profile 程序
	Project   string `yaml:"project"`    // memo-project 程序
	Blog      string `yaml:"blog"`       // memo-blog 程序
	Forum     string `yaml:"forum"`      // memo-forum 程序
	TokenMint string `yaml:"token_mint"` // MEMO 代币 mint 地址
}

// Network 是网络注册表中的一项
type Network struct {
	Name      string           `yaml:"name"`
	Endpoints []EndpointConfig `yaml:"endpoints"`
	Programs  ProgramAddresses `yaml:"programs"`
}

// BuiltinNetworks 返回内置网络注册表。
// prod-staging 用测试网 RPC 搭配主网合约，作为上线前的最后验证环境。
func BuiltinNetworks() []Network {
	mainnetPrograms := ProgramAddresses{
		Mint:      "8iq6zqaEVcfaym2u8t939PAN5jmfPVc6Z333RuxKTTZX",
		Burn:      "2sb3gz5Cmr2g1ia5si2rmCZqPACxgaZXEmiS5k6Htcvh",
		Chat:      "Hni4qE8GGW5uwBWzUEkpPBDRwXvKCWhM96teieAReRyd",
		Profile:   "2BY8vPpQRFFwAqK3HqU5qL3qsGMH3VnX9Gv9bud3vzH8",
		Project:   "6Vavot6ybhWBG3rjNXnLfNRPVTz7Garf6E4EZk3byp3a",
		Blog:      "3EKdp88FgyPC41bxRDzFAtCDUMV2g9SVt5UiytE8wdzM",
		Forum:     "6gzhG5BveTkJfTi466toX4qmN3BtU9qp1Grnk61GvmXD",
		TokenMint: "memoX1sJsBY6od7CfQ58XooRALwnocAZen4L7mW1ick",
	}

	return []Network{
		{
			Name: "testnet",
			Endpoints: []EndpointConfig{
				{Url: "https://rpc.testnet.x1.xyz", Weight: 1},
			},
			Programs: ProgramAddresses{
				Mint:      "A31a17bhgQyRQygeZa1SybytjbCdjMpu6oPr9M3iQWzy",
				Burn:      "FEjJ9KKJETocmaStfsFteFrktPchDLAVNTMeTvndoxaP",
				Chat:      "54ky4LNnRsbYioDSBKNrc5hG8HoDyZ6yhf8TuncxTBRF",
				Profile:   "BwQTxuShrwJR15U6Utdfmfr4kZ18VT6FA1fcp58sT8US",
				Project:   "ENVapgjzzMjbRhLJ279yNsSgaQtDYYVgWq98j54yYnyx",
				Blog:      "HPvqPUneCLwb8YYoYTrWmy6o7viRKsnLTgxwkg7CCpfB",
				Forum:     "9kwS5nSidmoHq84TyNzqFrtD29odp4sdRxm97tCbdpbS",
				TokenMint: "HLCoc7wNDavNMfWWw2Bwd7U7A24cesuhBSNkxZgvZm1",
			},
		},
		{
			Name: "prod-staging",
			Endpoints: []EndpointConfig{
				{Url: "https://rpc.testnet.x1.xyz", Weight: 1},
			},
			Programs: mainnetPrograms,
		},
		{
			Name: "mainnet",
			Endpoints: []EndpointConfig{
				{Url: "https://rpc.mainnet.x1.xyz", Weight: 1},
			},
			Programs: mainnetPrograms,
		},
	}
}

// LoadNetworks 返回内置注册表与可选覆盖文件合并后的结果。
// 覆盖文件按 name 匹配：同名项整体替换内置项，新名追加到末尾。
func LoadNetworks(overridePath string) ([]Network, error) {
	networks := BuiltinNetworks()
	if overridePath == "" {
		return networks, nil
	}

	raw, err := os.ReadFile(overridePath)
	if err != nil {
		return nil, fmt.Errorf("read network registry %s: %w", overridePath, err)
	}

	var override struct {
		Networks []Network `yaml:"networks"`
	}
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return nil, fmt.Errorf("parse network registry %s: %w", overridePath, err)
	}

	for _, item := range override.Networks {
		replaced := false
		for i := range networks {
			if networks[i].Name == item.Name {
				networks[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			networks = append(networks, item)
		}
	}
	return networks, nil
}

// ResolveNetwork 按名称查找网络，名称为空时默认 testnet
func ResolveNetwork(networks []Network, name string) (*Network, error) {
	if name == "" {
		name = "testnet"
	}
	for i := range networks {
		if networks[i].Name == name {
			return &networks[i], nil
		}
	}
	return nil, fmt.Errorf("unknown network: %s", name)
}
