/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"github.com/named-data/yanfd-engine/ndn"
)

// TrafficClass is the admission class of a name.
type TrafficClass int

const (
	// ClassNormal traffic is deferred only while admission is paused.
	ClassNormal TrafficClass = iota
	// ClassSensitive traffic is latency-sensitive and never deferred.
	ClassSensitive
	// ClassBulk traffic is also deferred while too many sensitive requests are outstanding.
	ClassBulk
)

func (c TrafficClass) String() string {
	switch c {
	case ClassSensitive:
		return "sensitive"
	case ClassBulk:
		return "bulk"
	}
	return "normal"
}

// Classifier assigns a traffic class to a name.
type Classifier interface {
	Classify(name ndn.Name) TrafficClass
}

// PrefixClassifier classifies names by the configured prefixes they fall under. Sensitive prefixes take priority
// over bulk prefixes.
type PrefixClassifier struct {
	sensitive []ndn.Name
	bulk      []ndn.Name
}

// NewPrefixClassifier creates a classifier from lists of sensitive and bulk prefixes.
func NewPrefixClassifier(sensitive []ndn.Name, bulk []ndn.Name) *PrefixClassifier {
	return &PrefixClassifier{sensitive: sensitive, bulk: bulk}
}

// Classify returns the class of the name.
func (p *PrefixClassifier) Classify(name ndn.Name) TrafficClass {
	for _, prefix := range p.sensitive {
		if prefix.PrefixOf(name) {
			return ClassSensitive
		}
	}
	for _, prefix := range p.bulk {
		if prefix.PrefixOf(name) {
			return ClassBulk
		}
	}
	return ClassNormal
}
