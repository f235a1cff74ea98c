package solar

import "math"

// degToRad converts an angle from degrees to radians for trigonometric calculations.
func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

// site holds the location constants used by every hourly position calculation.
// All angles are radians.
type site struct {
	latitude      float64
	longitude     float64
	localMeridian float64 // timezone * 15 degrees
}

func newSite(latDeg, lonDeg, timezoneHours float64) site {
	return site{
		latitude:      degToRad(latDeg),
		longitude:     degToRad(lonDeg),
		localMeridian: degToRad(timezoneHours * 15.0),
	}
}

// revolutionAngle is the Earth's orbital position for a 0-based day of year.
func revolutionAngle(dayOfYear int) float64 {
	return 2.0 * math.Pi * float64(dayOfYear) / 365.0
}

// equationOfTime returns the difference between apparent and mean solar time in minutes.
func equationOfTime(rev float64) float64 {
	return 2.2918 * (0.0075 + 0.1868*math.Cos(rev) - 3.2077*math.Sin(rev) - 1.4615*math.Cos(2*rev) - 4.089*math.Sin(2*rev))
}

// apparentSolarTime converts a clock hour into solar hours, correcting for the
// equation of time and the site's offset from its timezone meridian.
func (s site) apparentSolarTime(hour int, eot float64) float64 {
	return float64(hour) + eot/60.0 + (s.longitude-s.localMeridian)/(math.Pi/12.0)
}

// declination returns the solar declination (radians).
func declination(rev float64) float64 {
	return 0.006918 - 0.399912*math.Cos(rev) + 0.070257*math.Sin(rev) - 0.006758*math.Cos(2.0*rev) + 0.000907*math.Sin(2.0*rev)
}

// hourAngle is zero at solar noon and grows 15 degrees per hour.
func hourAngle(ast float64) float64 {
	return degToRad(15 * (ast - 12))
}

// altitude returns the solar elevation above the horizon (radians).
func (s site) altitude(dec, sha float64) float64 {
	return math.Asin(math.Cos(s.latitude)*math.Cos(dec)*math.Cos(sha) + math.Sin(s.latitude)*math.Sin(dec))
}

// azimuth returns the solar azimuth measured from south, positive toward west.
func (s site) azimuth(dec, sha, alt float64) float64 {
	sinAz := math.Sin(sha) * math.Cos(dec) / math.Cos(alt)
	cosAz := (math.Cos(sha)*math.Cos(dec)*math.Sin(s.latitude) - math.Sin(dec)*math.Cos(s.latitude)) / math.Cos(alt)
	return math.Atan2(sinAz, cosAz)
}

// groundReflected is the irradiance reflected off the ground onto a surface of the given tilt.
func groundReflected(eb, ed, rho, alt, tilt float64) float64 {
	return (eb*math.Sin(alt) + ed) * rho * (1 - math.Cos(tilt)) / 2
}

// angleOfIncidence is the angle between the sun's rays and the surface normal.
func angleOfIncidence(alt, surfaceSolarAzimuth, tilt float64) float64 {
	return math.Acos(math.Cos(alt)*math.Cos(surfaceSolarAzimuth)*math.Sin(tilt) + math.Sin(alt)*math.Cos(tilt))
}

// directBeam projects direct normal irradiance onto the surface.
func directBeam(eb, inc float64) float64 {
	return eb * math.Max(math.Cos(inc), 0.0)
}

// diffuseFactor brightens diffuse sky radiation near the sun's direction.
func diffuseFactor(inc float64) float64 {
	c := math.Cos(inc)
	return math.Max(0.45, 0.55+0.437*c+0.313*c*c)
}

// diffuse is the sky diffuse irradiance on the surface. The cos(tilt) sky
// view term applies only up to vertical.
func diffuse(ed, factor, tilt float64) float64 {
	if tilt > math.Pi/2 {
		return ed * factor * math.Sin(tilt)
	}
	return ed * (factor*math.Sin(tilt) + math.Cos(tilt))
}
