package identity

import (
	"crypto/rand"
	"fmt"

	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/dep2p/go-docstore/pkg/types"
)

// Identity 节点身份
//
// 创建后不可变，可在多个协议模块间只读共享。
type Identity struct {
	priv crypto.PrivKey
	id   peer.ID
}

// Generate 生成新的 Ed25519 身份
func Generate() (*Identity, error) {
	priv, _, err := crypto.GenerateEd25519Key(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("生成密钥失败: %w", err)
	}
	return FromPrivateKey(priv)
}

// FromPrivateKey 从私钥构造身份
func FromPrivateKey(priv crypto.PrivKey) (*Identity, error) {
	if priv == nil {
		return nil, ErrNilKey
	}
	id, err := peer.IDFromPrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("派生 PeerID 失败: %w", err)
	}
	return &Identity{priv: priv, id: id}, nil
}

// PeerID 节点地址
func (i *Identity) PeerID() types.PeerID {
	return types.PeerID(i.id.String())
}

// ID libp2p 形式的节点地址
func (i *Identity) ID() peer.ID {
	return i.id
}

// PrivateKey 私钥
func (i *Identity) PrivateKey() crypto.PrivKey {
	return i.priv
}

// PublicKey 公钥
func (i *Identity) PublicKey() crypto.PubKey {
	return i.priv.GetPublic()
}

// Encode 编码为字节
func Encode(i *Identity) ([]byte, error) {
	if i == nil {
		return nil, ErrNilKey
	}
	data, err := crypto.MarshalPrivateKey(i.priv)
	if err != nil {
		return nil, fmt.Errorf("编码私钥失败: %w", err)
	}
	return data, nil
}

// Decode 从字节解码
func Decode(data []byte) (*Identity, error) {
	if len(data) == 0 {
		return nil, ErrEmptyKey
	}
	priv, err := crypto.UnmarshalPrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptKey, err)
	}
	return FromPrivateKey(priv)
}
