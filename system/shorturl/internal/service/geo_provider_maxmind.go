package service

import (
	"context"
	"net"

	"linktrack/system/shorturl/internal/model"

	"github.com/oschwald/geoip2-golang"
)

// MaxMindProvider 读取本地 GeoLite2/GeoIP2 City 库，ASN 库可选
type MaxMindProvider struct {
	city *geoip2.Reader
	asn  *geoip2.Reader
}

func NewMaxMindProvider(cityDB, asnDB string) (*MaxMindProvider, error) {
	city, err := geoip2.Open(cityDB)
	if err != nil {
		return nil, err
	}
	p := &MaxMindProvider{city: city}
	if asnDB != "" {
		asn, err := geoip2.Open(asnDB)
		if err != nil {
			_ = city.Close()
			return nil, err
		}
		p.asn = asn
	}
	return p, nil
}

func (p *MaxMindProvider) Name() string {
	return "maxmind"
}

func (p *MaxMindProvider) Lookup(_ context.Context, ip net.IP) (*model.GeoData, error) {
	record, err := p.city.City(ip)
	if err != nil {
		return nil, err
	}
	if record.Country.IsoCode == "" {
		return nil, nil
	}

	lat, lon := record.Location.Latitude, record.Location.Longitude
	geo := &model.GeoData{
		Country:    record.Country.Names["en"],
		IsoCode:    record.Country.IsoCode,
		City:       record.City.Names["en"],
		PostalCode: record.Postal.Code,
		Timezone:   record.Location.TimeZone,
		Continent:  record.Continent.Code,
	}
	if lat != 0 || lon != 0 {
		geo.Latitude, geo.Longitude = &lat, &lon
	}
	if len(record.Subdivisions) > 0 {
		geo.State = record.Subdivisions[0].IsoCode
		geo.StateName = record.Subdivisions[0].Names["en"]
	}

	if p.asn != nil {
		if asn, err := p.asn.ASN(ip); err == nil {
			geo.ASN = asn.AutonomousSystemNumber
			geo.ASOrg = asn.AutonomousSystemOrganization
		}
	}
	return geo, nil
}

func (p *MaxMindProvider) Close() error {
	if p.asn != nil {
		_ = p.asn.Close()
	}
	return p.city.Close()
}
