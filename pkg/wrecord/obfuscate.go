package wrecord

// obfuscateServerList applies the ServerList additive key to buf in-place.
// decode subtracts the key byte, encode adds it back; both skip bytes [0..4)
// (the cleartext key prefix) and the first byte of each 64-byte
// world/channel string cell, which is stored as-is.
func obfuscateServerList(buf []byte, decode bool) {
	for p := 4; p < len(buf); p++ {
		// k is the byte's offset within its 64-byte world/channel cell;
		// cells start right after the 4-byte cleartext key prefix.
		k := (p - 4) % 64
		if k == 0 {
			continue // first byte of the cell: key index 63-k would be out of range
		}
		kb := int16(serverListKey[63-k])
		if decode {
			buf[p] = byte((int16(buf[p]) - kb) & 0xFF)
		} else {
			buf[p] = byte((int16(buf[p]) + kb) & 0xFF)
		}
	}
}

// obfuscateServerName applies the ServerName +/-100 offset to buf[0] in-place.
func obfuscateServerName(buf []byte, decode bool) {
	if len(buf) == 0 {
		return
	}
	if decode {
		buf[0] = byte((int16(buf[0]) - serverNameOffset) & 0xFF)
	} else {
		buf[0] = byte((int16(buf[0]) + serverNameOffset) & 0xFF)
	}
}
