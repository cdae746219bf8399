package wrecord

import (
	"fmt"
	"os"
	"path/filepath"
)

// File names persisted by the editor, kept bit-identical to spec.md §4.3.
const (
	FileServerList = "serverlist.bin"
	FileServerName = "server_name.bin"
	FileStrdef     = "strdef.bin"
)

// LoadServerList reads and decodes serverlist.bin from dir.
func LoadServerList(dir string) (ServerList, error) {
	buf, err := os.ReadFile(filepath.Join(dir, FileServerList))
	if err != nil {
		return ServerList{}, fmt.Errorf("wrecord: load serverlist: %w", err)
	}
	sl, err := DecodeServerList(buf)
	if err != nil {
		return ServerList{}, fmt.Errorf("wrecord: load serverlist: %w", err)
	}
	return sl, nil
}

// SaveServerList encodes sl and overwrites serverlist.bin in dir.
func SaveServerList(dir string, sl ServerList) error {
	if err := os.WriteFile(filepath.Join(dir, FileServerList), EncodeServerList(sl), 0666); err != nil {
		return fmt.Errorf("wrecord: save serverlist: %w", err)
	}
	return nil
}

// LoadServerName reads and decodes server_name.bin from dir.
func LoadServerName(dir string) (ServerName, error) {
	buf, err := os.ReadFile(filepath.Join(dir, FileServerName))
	if err != nil {
		return ServerName{}, fmt.Errorf("wrecord: load server_name: %w", err)
	}
	sn, err := DecodeServerName(buf)
	if err != nil {
		return ServerName{}, fmt.Errorf("wrecord: load server_name: %w", err)
	}
	return sn, nil
}

// SaveServerName encodes sn and overwrites server_name.bin in dir.
func SaveServerName(dir string, sn ServerName) error {
	if err := os.WriteFile(filepath.Join(dir, FileServerName), EncodeServerName(sn), 0666); err != nil {
		return fmt.Errorf("wrecord: save server_name: %w", err)
	}
	return nil
}

// LoadStrdef reads and decodes strdef.bin from dir.
func LoadStrdef(dir string) (Strdef, error) {
	buf, err := os.ReadFile(filepath.Join(dir, FileStrdef))
	if err != nil {
		return Strdef{}, fmt.Errorf("wrecord: load strdef: %w", err)
	}
	sd, err := DecodeStrdef(buf)
	if err != nil {
		return Strdef{}, fmt.Errorf("wrecord: load strdef: %w", err)
	}
	return sd, nil
}

// SaveStrdef encodes sd and overwrites strdef.bin in dir.
func SaveStrdef(dir string, sd Strdef) error {
	if err := os.WriteFile(filepath.Join(dir, FileStrdef), EncodeStrdef(sd), 0666); err != nil {
		return fmt.Errorf("wrecord: save strdef: %w", err)
	}
	return nil
}
