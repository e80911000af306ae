package model

import (
	"errors"
	"strings"
	"sync"
)

// Token 代币注册信息
type Token struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
}

// ErrUnknownToken 合约地址未注册
var ErrUnknownToken = errors.New("unknown token address")

var (
	tokenMu       sync.RWMutex
	tokensByAddr  = map[string]Token{}
	tokensByName  = map[string]Token{}
)

func init() {
	// 主网默认代币表
	for _, t := range []Token{
		{Address: "0x0000000000000000000000000000000000000000", Name: "ETH", Decimals: 18},
		{Address: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", Name: "WETH", Decimals: 18},
		{Address: "0x6b175474e89094c44da98b954eedeac495271d0f", Name: "DAI", Decimals: 18},
		{Address: "0x89d24a6b4ccb1b6faa2625fe562bdd9a23260359", Name: "SAI", Decimals: 18},
		{Address: "0xdac17f958d2ee523a2206206994597c13d831ec7", Name: "USDT", Decimals: 6},
		{Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", Name: "USDC", Decimals: 6},
		{Address: "0x1985365e9f78359a9b6ad760e32412f4a445e862", Name: "REP", Decimals: 18},
		{Address: "0x0d8775f648430679a709e98d2b0cb6250d2887ef", Name: "BAT", Decimals: 18},
		{Address: "0x514910771af9ca656af840dff83e8264ecf986ca", Name: "LINK", Decimals: 18},
	} {
		RegisterToken(t)
	}
}

// RegisterToken 注册代币（配置加载时可追加）
func RegisterToken(t Token) {
	tokenMu.Lock()
	defer tokenMu.Unlock()
	tokensByAddr[strings.ToLower(t.Address)] = t
	tokensByName[strings.ToUpper(t.Name)] = t
}

// TokenByAddress 按合约地址查找代币
func TokenByAddress(addr string) (Token, error) {
	tokenMu.RLock()
	defer tokenMu.RUnlock()
	t, ok := tokensByAddr[strings.ToLower(addr)]
	if !ok {
		return Token{}, ErrUnknownToken
	}
	return t, nil
}

// TokenByName 按符号查找代币
func TokenByName(name string) (Token, error) {
	tokenMu.RLock()
	defer tokenMu.RUnlock()
	t, ok := tokensByName[strings.ToUpper(name)]
	if !ok {
		return Token{}, ErrUnknownToken
	}
	return t, nil
}
