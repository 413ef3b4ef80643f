package rpc

// registerAllMethods wires every RPC method to the node service.
func (s *Server) registerAllMethods() {
	s.registry.Register("ping", &PingMethod{})
	s.registry.Register("server_info", &ServerInfoMethod{svc: s.svc})
	s.registry.Register("fee", &FeeMethod{svc: s.svc})

	s.registry.Register("submit", &SubmitMethod{svc: s.svc})

	s.registry.Register("ledger", &LedgerMethod{svc: s.svc})
	s.registry.Register("ledger_current", &LedgerCurrentMethod{svc: s.svc})
	s.registry.Register("ledger_closed", &LedgerClosedMethod{svc: s.svc})
	s.registry.Register("ledger_accept", &LedgerAcceptMethod{svc: s.svc})

	s.registry.Register("account_info", &AccountInfoMethod{svc: s.svc})

	s.registry.Register("card_info", &CardInfoMethod{svc: s.svc})
	s.registry.Register("listing_info", &ListingInfoMethod{svc: s.svc})
	s.registry.Register("card_trades", &CardTradesMethod{svc: s.svc})
}
