// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package proxy

// Precursor is the staging area for a connection between its first
// CTOSPlayerInfo frame and the CTOSJoinGame frame that upgrades it to a
// full Player.
type Precursor struct {
	Name      string
	DataCache [][]byte
}

func newPrecursor(name string) *Precursor {
	return &Precursor{Name: name}
}

func (p *Precursor) buffer(data []byte) {
	p.DataCache = append(p.DataCache, append([]byte(nil), data...))
}
