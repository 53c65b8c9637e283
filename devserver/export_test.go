package devserver

import "time"

func SetSignerClock(s *Signer, now func() time.Time) { s.now = now }

func SetTokensClock(t *Tokens, now func() time.Time) { t.now = now }

func SetServiceClock(s *Service, now func() time.Time) { s.now = now }
