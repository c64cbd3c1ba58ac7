package domain

import "errors"

var (
	ErrNoWallets        = errors.New("no wallet keys loaded")
	ErrNoProxies        = errors.New("no proxies loaded")
	ErrProxyShortage    = errors.New("proxy count must exceed wallet count")
	ErrNotAuthenticated = errors.New("account has no session token")
)
